// Package config loads and validates the engine configuration.
//
// Configuration comes from a YAML file, with every value overridable by
// a NEARWATCH_ environment variable. Loading happens once at startup;
// validation rejects incomplete or contradictory settings before any
// component starts.
//
// Secrets (broker passwords, InfluxDB tokens, the API key, the ticket
// signing secret) belong in environment variables rather than the file,
// and the file itself should be 0600.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Service.Name)
package config
