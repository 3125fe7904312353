package config

// Redis connection part of configuration
type Redis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Metrics exporter configuration
type Metrics struct {
	Listen string `yaml:"listen"`
}

// Private part of configuration
type Private struct {
	Prefix      string   `yaml:"prefix"`
	MuteRole    string   `yaml:"mute_role"`
	Color       string   `yaml:"color"`
	BannedWords []string `yaml:"banned_words"`
	Rules       []string `yaml:"rules"`
	Redis       Redis    `yaml:"redis"`
	Metrics     Metrics  `yaml:"metrics"`
}

// Server specific part of configuration
type Server struct {
	GuildID string `yaml:"id"`
	Prefix  string `yaml:"prefix"`
	ModLog  string `yaml:"modlog"`
}

// Root of configuration
type Root struct {
	Servers []Server `yaml:"servers"`
	Private Private  `yaml:"private"`
}
