// Parses flags, configures logging and runs the cruxbuild commands.
//
// The tool accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-f, --file      Manifest path.
//	    --settings  Settings file path.
//
// and the commands validate, plan, dry-run, hash, catalog and version.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity
// before the command runs. [ExitCode] maps the returned error to the process
// exit status.
package cli
