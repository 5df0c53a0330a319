package relay

// roomWords are the pools memorable room ids draw from. Each id takes one word
// from four distinct pools.
var roomWords = [][]string{
	{ // animals
		"kitten", "puppy", "bunny", "panda", "koala", "fox", "otter", "hedgehog", "squirrel", "hamster",
		"beaver", "seahorse", "dolphin", "whale", "narwhal", "penguin", "flamingo", "pelican", "robin", "toucan",
		"parrot", "canary", "lynx", "badger", "heron", "walrus", "gecko", "llama", "yak", "moose",
	},
	{ // food
		"pancake", "waffle", "sushi", "ramen", "curry", "taco", "burrito", "biryani", "paella", "risotto",
		"lasagna", "pizza", "dumpling", "noodle", "omelette", "quiche", "kebab", "fondue", "pierogi", "gnocchi",
		"falafel", "samosa", "poutine", "dimsum", "bagel", "pretzel", "churro", "mochi", "crepe", "scone",
	},
	{ // things
		"lantern", "puddle", "pebble", "cottage", "rocket", "comet", "orbit", "nebula", "canyon", "ridge",
		"marble", "maple", "cocoa", "hazel", "breeze", "meadow", "willow", "ember", "kettle", "compass",
		"anchor", "harbor", "beacon", "glacier", "island", "lagoon", "summit", "prairie", "tundra", "delta",
	},
	{ // adjectives
		"tiny", "happy", "sleepy", "fluffy", "sparkly", "cheery", "silly", "jolly", "cozy", "shiny",
		"golden", "silver", "crimson", "emerald", "purple", "bright", "gentle", "brave", "calm", "swift",
		"silent", "bouncy", "fuzzy", "plucky", "merry", "peppy", "quiet", "witty", "lucky", "mellow",
	},
	{ // sounds
		"purr", "meow", "woof", "chirp", "splash", "drizzle", "hum", "buzz", "ping", "click",
		"ripple", "whistle", "rustle", "murmur", "tap", "clang", "swoosh", "patter", "echo", "jingle",
	},
}
