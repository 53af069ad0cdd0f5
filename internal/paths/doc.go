// Provides platform-appropriate paths for the builder.
//
// User paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows, with "cruxbuild" as the subdirectory under each base
// path. Project manifests are found by walking up from the working
// directory.
package paths
