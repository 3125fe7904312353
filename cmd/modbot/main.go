package main

import (
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	yamlConfig "github.com/eientei/modbot/discordbot/config"
	"github.com/eientei/modbot/discordbot/modules/auth"
	"github.com/eientei/modbot/discordbot/modules/cleanup"
	"github.com/eientei/modbot/discordbot/modules/config"
	"github.com/eientei/modbot/discordbot/modules/filter"
	"github.com/eientei/modbot/discordbot/modules/general"
	"github.com/eientei/modbot/discordbot/modules/help"
	"github.com/eientei/modbot/discordbot/modules/metrics"
	"github.com/eientei/modbot/discordbot/modules/moderation"
	"github.com/eientei/modbot/discordbot/modules/modlog"
	"github.com/eientei/modbot/discordbot/modules/reply"
	redis "github.com/go-redis/redis/v7"
	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var opts struct {
	Config   string `short:"c" long:"config" default:"config.yml" description:"Configuration file"`
	Env      string `long:"env" default:".env" description:"Dotenv file with secrets, ignored if missing"`
	TokenEnv string `long:"token-env" default:"DISCORD_TOKEN" description:"Environment variable holding bot token"`
	LogLevel string `long:"log-level" default:"info" description:"Logging level"`
}

func readConfig(log *logrus.Logger, configPath string) *yamlConfig.Root {
	configFile, err := os.OpenFile(configPath, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		log.Fatal(err)
	}

	c, err := yamlConfig.Read(configFile)
	if err != nil {
		log.Fatal(err)
	}

	err = configFile.Close()
	if err != nil {
		log.Fatal(err)
	}

	return c
}

func readToken(log *logrus.Logger) string {
	err := godotenv.Load(opts.Env)
	if err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Loading dotenv file")
	}

	token := os.Getenv(opts.TokenEnv)
	if token == "" {
		log.Fatalf("Missing bot token in %s environment variable", opts.TokenEnv)
	}

	return token
}

func main() {
	log := logrus.New()

	_, err := flags.Parse(&opts)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(1)
	}

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	log.SetLevel(level)

	configRoot := readConfig(log, opts.Config)

	dg, err := discordgo.New("Bot " + readToken(log))
	if err != nil {
		log.Fatal(err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	client := redis.NewClient(&redis.Options{
		Addr:     configRoot.Private.Redis.Address,
		Password: configRoot.Private.Redis.Password,
		DB:       configRoot.Private.Redis.DB,
	})

	b, err := bot.NewBot(bot.Options{
		Discord: dg,
		Client:  client,
		Config:  configRoot,
		Log:     log,
		Modules: []bot.Module{
			metrics.New(),
			cleanup.New(),
			reply.New(),
			auth.New(),
			filter.New(),
			help.New(),
			moderation.New(),
			general.New(),
			config.New(),
			modlog.New(),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	err = b.Serve()
	if err != nil {
		log.Fatal(err)
	}
}
