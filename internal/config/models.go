package config

// PipelineConfig represents the configuration for the feature pipeline
type PipelineConfig struct {
	Name        string
	VocabSize   int
	MaxBodySize int
}

// ClassifierConfig represents the configuration for the linear classifier
type ClassifierConfig struct {
	Algorithm    string
	Epochs       int
	LearningRate float64
	L2           float64
}

// CorpusConfig represents the configuration for the training corpus layout
type CorpusConfig struct {
	Dir     string
	SpamDir string
	HamDir  string
}

// StoreConfig represents the configuration for pipeline persistence
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// GetPipeline returns the pipeline configuration
func (c *Config) GetPipeline() PipelineConfig {
	return PipelineConfig{
		Name:        c.GetString("pipeline.name"),
		VocabSize:   c.GetInt("pipeline.vocab_size"),
		MaxBodySize: c.GetInt("pipeline.max_body_size"),
	}
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Algorithm:    c.GetString("classifier.algorithm"),
		Epochs:       c.GetInt("classifier.epochs"),
		LearningRate: c.GetFloat64("classifier.learning_rate"),
		L2:           c.GetFloat64("classifier.l2"),
	}
}

// GetCorpus returns the corpus configuration
func (c *Config) GetCorpus() CorpusConfig {
	return CorpusConfig{
		Dir:     c.GetString("corpus.dir"),
		SpamDir: c.GetString("corpus.spam_dir"),
		HamDir:  c.GetString("corpus.ham_dir"),
	}
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}
