// Command importer loads a daily report CSV, derives active counts,
// aggregates country summaries and writes everything to the snapshot
// store, pruning rows older than the retention window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/epitrend/epitrend-api/agg"
	"github.com/epitrend/epitrend-api/dataset"
	"github.com/epitrend/epitrend-api/store"
)

const (
	logPrefix            = "importer"
	defaultTimeout       = 15 * time.Second
	defaultRetentionDays = 365
)

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("epitrend")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func main() {
	var configFile string

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	records, err := dataset.Load(viper.GetString("data.csv"))
	if err != nil {
		log.Panicf("load case data with error: %s", err)
	}
	dataset.DeriveActive(records)
	log.WithFields(log.Fields{"prefix": logPrefix, "records": len(records)}).Info("loaded case dataset")

	opts := options.Client().ApplyURI(viper.GetString("mongo.conn"))
	opts.SetMaxPoolSize(viper.GetUint64("mongo.pool"))
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		log.Panicf("create mongo client with error: %s", err)
	}

	if err := mongoClient.Connect(context.Background()); nil != err {
		log.Panicf("connect mongo database with error: %s", err)
	}

	mStore := store.NewMongoStore(
		mongoClient,
		viper.GetString("mongo.database"),
	)

	if err := mStore.ReplaceCases(context.Background(), records); err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "error": err}).Error("write case records")
		os.Exit(1)
	}

	summaries := agg.SummarizeByCountry(records)
	if err := mStore.ReplaceSummaries(context.Background(), summaries); err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "error": err}).Error("write country summaries")
		os.Exit(1)
	}
	log.WithFields(log.Fields{"prefix": logPrefix, "countries": len(summaries)}).Info("wrote country summaries")

	retentionDays := viper.GetInt("data.retention_days")
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := mStore.DeleteCasesBefore(context.Background(), cutoff)
	if err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "error": err}).Error("prune stale case records")
	} else {
		log.WithFields(log.Fields{"prefix": logPrefix, "records": deleted}).Info("pruned stale case records")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	log.Info("Shutting down mongo store")
	_ = mongoClient.Disconnect(ctx)
}
