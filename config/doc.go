// Package config resolves broker connection settings for brokerboot.
//
// Two layers live here. Resolve is the pure properties resolver: it binds
// the flat messaging.broker.* keys into a ConnectionConfig, applying defaults
// for omitted keys and rejecting malformed values with a
// *errors.ConfigurationError that names the offending key.
//
// Loader produces the raw Properties that Resolve consumes. It merges file
// layers (.properties, .yaml/.yml, .json) and applies environment overrides:
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/broker.properties")
//	loader.AddLayer("config/production.yaml") // Overrides broker.properties
//
//	props, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := config.Resolve(props)
//
// # Keys
//
//	messaging.broker.host      default "localhost"
//	messaging.broker.port      default 5672
//	messaging.broker.username  unset (broker client default)
//	messaging.broker.password  unset (broker client default)
//	messaging.broker.dynamic   default true
//
// Nested YAML and JSON documents are flattened to dotted keys, so
//
//	messaging:
//	  broker:
//	    host: broker1
//
// sets messaging.broker.host. Environment variables named
// MESSAGING_BROKER_<KEY> (for example MESSAGING_BROKER_PORT) override file
// values.
//
// A blank value is treated as if the key were absent. In particular an empty
// username or password never reaches the connection factory.
package config
