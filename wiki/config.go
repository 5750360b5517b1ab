package wiki

// Config holds the file-based configuration for the wiki, loaded from
// config.yaml and command-line flags before anything else starts.
type Config struct {
	DatabaseFile    string `yaml:"dbfile"`
	Host            string `yaml:"host"`
	StaticDir       string `yaml:"static_dir"`
	LogFormat       string `yaml:"log_format"`
	LogLevel        string `yaml:"log_level"`
	LogsDir         string `yaml:"logs_dir"`      // "" disables the log file
	LogFileName     string `yaml:"log_file_name"`
	RenderWorkers   int    `yaml:"render_workers"` // 0 means runtime.NumCPU()
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
	MaxContentBytes int    `yaml:"max_content_bytes"`
	SeedHelp        bool   `yaml:"seed_help"` // create missing help pages on startup
}
