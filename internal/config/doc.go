// Package config loads Sputnik configuration with viper.
//
// Settings come from, in increasing priority: built-in defaults, an optional
// config file (sputnik.yaml in the working directory or ./config, or the
// path given to Load), and SPUTNIK_* environment variables. Nested keys map
// to upper-case names joined by underscores:
//
//	server.address   SPUTNIK_SERVER_ADDRESS
//	session.store    SPUTNIK_SESSION_STORE
//	likes.recorders  SPUTNIK_LIKES_RECORDERS=redis,amqp
//
// A minimal file:
//
//	server:
//	  address: ":8080"
//	  mount_id: login
//	session:
//	  store: redis
//	redis:
//	  addr: localhost:6379
//	log:
//	  format: json
package config
