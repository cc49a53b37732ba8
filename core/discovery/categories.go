package discovery

// Category is one predefined genre/time-window combination used to fetch a
// bucket of trending tracks.
type Category struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Path  string `json:"-"` // request path, "/v1/tracks/trending" unless overridden
	Genre string `json:"genre,omitempty"`
	Time  string `json:"time,omitempty"`
	Limit int    `json:"limit"`
}

const trendingPath = "/v1/tracks/trending"

// Categories is the fixed bucket table. Order matters: during global
// aggregation the first category to discover a track wins.
var Categories = []Category{
	{Key: "top10Weekly", Title: "Top 10 Weekly Hits", Path: trendingPath, Time: "week", Limit: 10},
	{Key: "top50AllTime", Title: "Top 50 All-Time Hits", Path: trendingPath, Time: "allTime", Limit: 50},
	{Key: "underground", Title: "Underground Gems", Path: trendingPath + "/underground", Limit: 20},
	{Key: "rock", Title: "Rock Hits", Path: trendingPath, Genre: "Rock", Time: "month", Limit: 20},
	{Key: "metal", Title: "Metal Mania", Path: trendingPath, Genre: "Metal", Time: "month", Limit: 20},
	{Key: "electronic", Title: "Electronic Vibes", Path: trendingPath, Genre: "Electronic", Time: "month", Limit: 20},
	{Key: "hiphopRap", Title: "HipHop/Rap Beats", Path: trendingPath, Genre: "HipHop/Rap", Time: "month", Limit: 20},
	{Key: "experimental", Title: "Experimental Sounds", Path: trendingPath, Genre: "Experimental", Time: "month", Limit: 20},
	{Key: "punk", Title: "Punk Rock", Path: trendingPath, Genre: "Punk", Time: "month", Limit: 20},
	{Key: "pop", Title: "Pop Favorites", Path: trendingPath, Genre: "Pop", Time: "month", Limit: 20},
	{Key: "folk", Title: "Folk & Acoustic", Path: trendingPath, Genre: "Folk", Time: "month", Limit: 20},
	{Key: "alternative", Title: "Alternative Hits", Path: trendingPath, Genre: "Alternative", Time: "month", Limit: 20},
	{Key: "ambient", Title: "Ambient", Path: trendingPath, Genre: "Ambient", Time: "month", Limit: 20},
	{Key: "jazz", Title: "Jazz", Path: trendingPath, Genre: "Jazz", Time: "month", Limit: 20},
	{Key: "acoustic", Title: "Acoustic", Path: trendingPath, Genre: "Acoustic", Time: "month", Limit: 20},
	{Key: "funk", Title: "Funk", Path: trendingPath, Genre: "Funk", Time: "month", Limit: 20},
	{Key: "rnbSoul", Title: "R&B/Soul", Path: trendingPath, Genre: "R&B/Soul", Time: "month", Limit: 20},
	{Key: "classical", Title: "Classical", Path: trendingPath, Genre: "Classical", Time: "month", Limit: 20},
	{Key: "reggae", Title: "Reggae", Path: trendingPath, Genre: "Reggae", Time: "month", Limit: 20},
	{Key: "country", Title: "Country", Path: trendingPath, Genre: "Country", Time: "month", Limit: 20},
	{Key: "blues", Title: "Blues", Path: trendingPath, Genre: "Blues", Time: "month", Limit: 20},
	{Key: "lofi", Title: "Lo-Fi", Path: trendingPath, Genre: "Lo-Fi", Time: "month", Limit: 20},
	{Key: "techno", Title: "Techno", Path: trendingPath, Genre: "Techno", Time: "month", Limit: 20},
	{Key: "trap", Title: "Trap", Path: trendingPath, Genre: "Trap", Time: "month", Limit: 20},
	{Key: "house", Title: "House", Path: trendingPath, Genre: "House", Time: "month", Limit: 20},
	{Key: "deephouse", Title: "Deep House", Path: trendingPath, Genre: "Deep House", Time: "month", Limit: 20},
	{Key: "disco", Title: "Disco", Path: trendingPath, Genre: "Disco", Time: "month", Limit: 20},
	{Key: "electro", Title: "Electro", Path: trendingPath, Genre: "Electro", Time: "month", Limit: 20},
	{Key: "jungle", Title: "Jungle", Path: trendingPath, Genre: "Jungle", Time: "month", Limit: 20},
	{Key: "progressivehouse", Title: "Progressive House", Path: trendingPath, Genre: "Progressive House", Time: "month", Limit: 20},
	{Key: "trance", Title: "Trance", Path: trendingPath, Genre: "Trance", Time: "month", Limit: 20},
	{Key: "dubstep", Title: "Dubstep", Path: trendingPath, Genre: "Dubstep", Time: "month", Limit: 20},
	{Key: "vaporwave", Title: "Vaporwave", Path: trendingPath, Genre: "Vaporwave", Time: "month", Limit: 20},
}

// CategoryByKey looks up a category bucket by key.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
