// Package config loads statebox.json, the configuration for the statebox
// command.
//
// # Configuration File Structure
//
//	{
//	  "name": "demo",
//	  "server": {"host": "localhost", "port": 7070},
//	  "metrics": {"enabled": true, "namespace": "statebox"},
//	  "tracing": {"enabled": false, "tracerName": "statebox"},
//	  "snapshot": {
//	    "backend": "s3",
//	    "bucket": "state-snapshots",
//	    "prefix": "demo/",
//	    "region": "us-east-1"
//	  },
//	  "log": {"level": "info", "format": "text"},
//	  "notifyMode": "locked",
//	  "states": {
//	    "count": 0,
//	    "title": "hello"
//	  }
//	}
//
// Each entry in states becomes a container holding the decoded JSON value.
//
// The same structure can be written as statebox.yaml (or statebox.yml); it is
// converted to JSON before decoding, so field names are identical. When a
// directory holds more than one, statebox.json wins.
package config
