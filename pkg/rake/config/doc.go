/*
Package config loads rake client settings from YAML or JSON.

# Basic Usage

	settings, err := config.FromFile("rake.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	if err := settings.Validate(); err != nil {
	    log.Fatal(err)
	}

	queue := delivery.NewBatchQueue(delivery.NewHTTPSender(nil), settings.Delivery())
	environment := env.NewSystem(settings.Environment())

A minimal file:

	token: tok-123
	dev_server: true
	flush_interval: 30s
	batch_size: 100
	store_path: /var/lib/myapp/rake.db

# Value Coercion

Durations accept Go duration strings ("30s", "1m30s") or numbers,
which are read as seconds. Integers written as JSON numbers (float64) are
accepted when they have no fractional part. A value of the wrong type is
an error naming the field; missing fields keep their defaults.
*/
package config
