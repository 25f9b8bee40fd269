// The firetrack service is the REST backend for tracking fire incidents
// across the barangays of the municipality.
package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/bfp-echague/firetrack/cluster"
	"github.com/bfp-echague/firetrack/core"
	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/core/csql"
	"github.com/bfp-echague/firetrack/core/logger"
	"github.com/bfp-echague/firetrack/core/rest"
	"github.com/bfp-echague/firetrack/notify"
	"github.com/bfp-echague/firetrack/tracker"
	"github.com/bfp-echague/firetrack/tracker/pgstore"
)

// Service holds the configuration for this service
//
// use POSTGRES="host=localhost port=5432 user=postgres password=docker dbname=postgres sslmode=disable"
type Service struct {
	Postgres             string `env:"POSTGRES,required" description:"the connection string for the Postgres DB"`
	PostgresSchema       string `env:"POSTGRES_SCHEMA,default=firetrack" description:"the database schema to use"`
	Port                 string `env:"PORT,default=3000" description:"the port to listen on"`
	SessionSecret        string `env:"SESSION_SECRET,required" description:"the secret signing the session cookies"`
	SessionLifetimeHours int    `env:"SESSION_LIFETIME_HOURS,default=72" description:"the sliding session lifetime in hours"`
	MLServerURL          string `env:"ML_SERVER_URL,required" description:"the base URL of the clustering service"`
	KafkaBrokers         string `env:"KAFKA_BROKERS,default=" description:"comma separated Kafka brokers for mutation events, empty disables Kafka"`
	KafkaTopic           string `env:"KAFKA_TOPIC,default=firetrack.mutations" description:"the Kafka topic for mutation events"`
	LogLevel             string `env:"LOG_LEVEL,default=info" description:"the log level"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	level, err := logrus.ParseLevel(service.LogLevel)
	if err != nil {
		panic(err)
	}
	logger.InitLogger(level)
	rlog := logger.Default()

	db := csql.OpenWithSchema(service.Postgres, service.PostgresSchema)
	defer db.Close()

	var notifier core.Notifier = notify.LogNotifier{}
	if service.KafkaBrokers != "" {
		kafkaNotifier := notify.NewKafkaNotifier(
			strings.Split(service.KafkaBrokers, ","), service.KafkaTopic)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	store := pgstore.New(db, notifier)
	sessions := &access.Manager{
		Store:    store,
		Secret:   []byte(service.SessionSecret),
		Lifetime: time.Duration(service.SessionLifetimeHours) * time.Hour,
	}

	router := mux.NewRouter()
	logger.AddRequestID(router)
	rest.AddCORS(router)

	binder := &rest.Binder{
		Router:   router,
		Sessions: sessions,
		Limits:   rest.NewLimiterSet(),
		BasePath: "/api",
	}

	binder.Bind("", rest.PermissionsNone(), tracker.HelloTable())
	binder.Bind("/barangay", rest.PermissionsEditAdminOnly(), tracker.BarangayTable(store))
	binder.Bind("/category", rest.PermissionsBasicOnly(), tracker.CategoryTable(store))
	binder.Bind("/cause", rest.PermissionsBasicOnly(), tracker.CauseTable(store))
	binder.Bind("/incident", rest.PermissionsBasicOnly(), tracker.IncidentTable(store))
	binder.Bind("/user", tracker.UserPermissions(), tracker.UserTable(store, sessions))
	binder.Bind("/cluster", rest.PermissionSet{Post: access.PrivilegeBasic},
		cluster.Table(store, cluster.NewClient(service.MLServerURL)))
	binder.HandleFunc(http.MethodPost, "/login", binder.Limits.Login,
		tracker.LoginHandler(store, sessions))
	binder.HandleFunc(http.MethodDelete, "/login", binder.Limits.Login,
		tracker.LogoutHandler(store, sessions))

	if err := tracker.Seed(context.Background(), store); err != nil {
		panic(err)
	}

	rlog.Println("listen on port :" + service.Port)
	http.ListenAndServe(":"+service.Port, router)
}
