package genre

// GroupSeed defines a curated genre group.
// Members are canonical genre names as produced by Normalize.
type GroupSeed struct {
	Name        string   `koanf:"name" json:"name"`
	DisplayName string   `koanf:"display_name" json:"display_name"`
	Description string   `koanf:"description" json:"description"`
	SortOrder   int      `koanf:"sort_order" json:"sort_order"`
	Genres      []string `koanf:"genres" json:"genres"`
}

// DefaultGroups is the built-in set of genre groups.
// Operators can replace it with a groups file.
//
//nolint:gochecknoglobals // Static seed data
var DefaultGroups = []GroupSeed{
	{
		Name:        "rock",
		DisplayName: "Rock",
		Description: "Guitar-driven rock from rock and roll onward",
		SortOrder:   10,
		Genres: []string{
			"rock", "rock and roll", "classic rock", "alternative rock",
			"hard-rock", "indie-rock", "garage-rock", "psychedelic-rock",
			"progressive-rock", "art-rock", "grunge", "britpop",
			"shoegaze", "post-punk", "post-rock", "math-rock",
			"noise-rock", "space-rock", "stoner-rock",
		},
	},
	{
		Name:        "metal",
		DisplayName: "Metal",
		Description: "Heavy metal and its offshoots",
		SortOrder:   20,
		Genres: []string{
			"metal", "heavy-metal", "thrash-metal", "death-metal",
			"black-metal", "doom-metal", "power-metal", "speed-metal",
			"progressive-metal", "nu-metal", "metalcore", "sludge metal",
		},
	},
	{
		Name:        "punk",
		DisplayName: "Punk",
		Description: "Punk, hardcore and their descendants",
		SortOrder:   30,
		Genres: []string{
			"punk", "pop-punk", "proto-punk", "folk-punk",
			"hardcore", "post-hardcore", "emo", "post-punk",
		},
	},
	{
		Name:        "electronic",
		DisplayName: "Electronic",
		Description: "Club and home-listening electronic music",
		SortOrder:   40,
		Genres: []string{
			"electronic", "techno", "house", "acid-house",
			"electro-house", "trance", "drum & bass", "dubstep",
			"idm", "synth-pop", "darkwave", "coldwave",
			"trip-hop", "downtempo",
		},
	},
	{
		Name:        "hip-hop-rnb",
		DisplayName: "Hip-Hop & R&B",
		Description: "Hip-hop, rap and contemporary R&B",
		SortOrder:   50,
		Genres: []string{
			"hip-hop", "rap", "trap", "r&b", "neo-soul", "trip-hop",
		},
	},
	{
		Name:        "soul-funk",
		DisplayName: "Soul & Funk",
		Description: "Soul, funk and disco",
		SortOrder:   60,
		Genres: []string{
			"soul", "funk", "disco", "motown", "neo-soul",
		},
	},
	{
		Name:        "jazz-blues",
		DisplayName: "Jazz & Blues",
		Description: "Jazz traditions and the blues",
		SortOrder:   70,
		Genres: []string{
			"jazz", "acid-jazz", "jazz-fusion", "bebop", "swing", "blues",
		},
	},
	{
		Name:        "folk-country",
		DisplayName: "Folk & Country",
		Description: "Acoustic, roots and country music",
		SortOrder:   80,
		Genres: []string{
			"folk", "folk-rock", "country", "alt-country",
			"americana", "bluegrass", "singer-songwriter",
		},
	},
	{
		Name:        "pop",
		DisplayName: "Pop",
		Description: "Pop in its many forms",
		SortOrder:   90,
		Genres: []string{
			"pop", "indie-pop", "dream-pop", "power-pop",
			"synth-pop", "new wave", "britpop",
		},
	},
	{
		Name:        "ambient-experimental",
		DisplayName: "Ambient & Experimental",
		Description: "Texture-first and outsider music",
		SortOrder:   100,
		Genres: []string{
			"ambient", "drone", "experimental", "noise",
			"lo-fi", "slowcore", "post-rock",
		},
	},
	{
		Name:        "decades",
		DisplayName: "Decades",
		Description: "Era tags",
		SortOrder:   110,
		Genres: []string{
			"60s", "70s", "80s", "90s", "2000s", "2010s", "2020s",
		},
	},
}
