package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Database struct {
		Driver                string // "mysql" hoặc "sqlite"
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		SqlitePath            string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	GithubApi struct {
		AccessToken           string
		ApiUrl                string
		PerPage               int
		LanguageRepoLimit     int
		TopLanguageCount      int
		CacheTtlHours         int
		MaxConcurrentRequests int
		RequestsPerSecond     int
		ThrottleDelay         int
		PauseThreshold        int
		PollIntervalSeconds   int
	}

	KafkaProducer struct {
		TopicActivity string
	}

	Kafka struct {
		Enabled  bool
		Brokers  []string
		Producer KafkaProducer
	}

	Relay struct {
		Port         int
		ClientId     string
		ClientSecret string
		CallbackUrl  string
	}
)

type Config struct {
	App       App
	Database  Database
	GithubApi GithubApi
	Kafka     Kafka
	Relay     Relay
}
