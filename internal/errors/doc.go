// Package errors provides structured, actionable errors for the statebox
// command line and configuration loader.
//
// Each error has a code registered with a category, a short message and a
// longer detail. Codes are grouped by range:
//   - E1xx: configuration (missing file, syntax, invalid values)
//   - E2xx: runtime (state decoding, poisoned containers, server startup)
//   - E3xx: snapshots (backend setup, save, restore)
//
// # Usage
//
//	err := errors.New("E101").
//	    WithOffset("statebox.json", data, 42).
//	    WithSuggestion("Check for a trailing comma").
//	    Wrap(syntaxErr)
//
//	errors.PrintError(err)
//	// ERROR E101: Config file is not valid JSON
//	//
//	//   statebox.json:3:17
//	//
//	//       2 │   "server": {
//	//   →   3 │     "port": 7070,
//	//         │                 ^
//	//       4 │   },
//	//   ...
package errors
