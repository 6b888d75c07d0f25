// Package cli provides the interactive rentkeeper upload client.
//
// It wires configuration, the metadata service client, the upload services
// and the local attempt journal, then runs a REPL. On start it releases any
// upload credentials a previous run left behind.
//
// Commands:
//   - upload / replace: send a local file to an entity slot
//   - list / latest: show the files of an entity
//   - delete: remove a file record
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
