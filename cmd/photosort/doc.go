// Command photosort sorts a camera dump into an event-organized photo tree.
//
//	photosort [flags] <source> <destination>
//	photosort check <source> <destination>
//	photosort config init
//
// Paths and sorting options come from the TOML config (see `config init`);
// positional arguments and flags override it for a single invocation.
package main
