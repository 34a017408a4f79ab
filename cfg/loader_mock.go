package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "gitshare",
			Version: "0.0.1",
		},

		// Database
		Database: Database{
			Driver:                "sqlite",
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "gitshare",
			SqlitePath:            "gitshare.db",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:           "",
			ApiUrl:                "https://api.github.com",
			PerPage:               10,
			LanguageRepoLimit:     30,
			TopLanguageCount:      3,
			CacheTtlHours:         24,
			MaxConcurrentRequests: 5,
			RequestsPerSecond:     10,
			ThrottleDelay:         100,
			PauseThreshold:        10,
			PollIntervalSeconds:   30,
		},

		// Kafka
		Kafka: Kafka{
			Enabled: false,
			Brokers: []string{"127.0.0.1:9092"},
			Producer: KafkaProducer{
				TopicActivity: "gitshare.activity",
			},
		},

		// Relay
		Relay: Relay{
			Port:         3000,
			ClientId:     "",
			ClientSecret: "",
			CallbackUrl:  "http://localhost/callback.html",
		},
	}, nil
}
