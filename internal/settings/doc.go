// Package settings reads the user's builder settings.
//
// Settings are a YAML (or JSON) file with the keys version-check,
// ubuntu-mirror, uid-map and gid-map. Id maps are lists of
// [inside, outside, count] triples, decoded into OCI runtime
// LinuxIDMapping values.
//
// Example usage:
//
//	s, err := settings.Load(paths.Settings())
//	if err != nil {
//	    return err
//	}
//	if !s.UIDMap.Covers(1000) {
//	    return errors.New("uid 1000 is not mapped")
//	}
package settings
