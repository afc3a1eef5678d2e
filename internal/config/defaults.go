package config

const (
	defaultRawDir          = "~/.local/share/cinelake/raw"
	defaultFallbackRawDir  = "data/raw"
	defaultCuratedDir      = "~/.local/share/cinelake/curated"
	defaultMetadataDir     = "~/.local/share/cinelake/metadata"
	defaultLogDir          = "~/.local/share/cinelake/logs"
	defaultOverridesDir    = "~/.local/share/cinelake/user_data"
	defaultRemoteBaseURL   = "https://www.kaggle.com/api/v1"
	defaultRemoteTimeout   = 300
	defaultWarehouseFile   = "lake.sqlite"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultRunIntervalMins = 60
	defaultNtfyTimeout     = 10
)

// DefaultSources returns the three sources the pipeline was built around: the
// aggregator reviews feed, the aggregator movie table, and the external catalog.
func DefaultSources() []Source {
	return []Source{
		{
			Name:     "rt_reviews",
			Kind:     KindLocalFile,
			Path:     "rotten_tomatoes_movie_reviews.csv",
			FileName: "rotten_tomatoes_movie_reviews.csv",
		},
		{
			Name:     "rt_movies",
			Kind:     KindLocalFile,
			Path:     "rotten_tomatoes_movies.csv",
			FileName: "rotten_tomatoes_movies.csv",
		},
		{
			Name:     "imdb_kaggle",
			Kind:     KindRemoteDataset,
			Dataset:  "isaidhs/imdb-dataset",
			FileName: "IMDB Dataset.csv",
		},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RawDir:         defaultRawDir,
			FallbackRawDir: defaultFallbackRawDir,
			CuratedDir:     defaultCuratedDir,
			MetadataDir:    defaultMetadataDir,
			LogDir:         defaultLogDir,
			OverridesDir:   defaultOverridesDir,
			CacheDir:       defaultCacheDir(),
		},
		Sources: DefaultSources(),
		Remote: Remote{
			BaseURL:        defaultRemoteBaseURL,
			TimeoutSeconds: defaultRemoteTimeout,
		},
		Warehouse: Warehouse{
			Enabled: true,
		},
		Workflow: Workflow{
			RunIntervalMinutes: defaultRunIntervalMins,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
