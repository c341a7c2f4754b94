// Package index implements the staging area of an entity type.
//
// Adding a workspace splits every new or changed file into the staging block store,
// records its key in a manifest fragment and tracks it in the full index (INDEX.yaml),
// so that adding again an untouched file skips hashing altogether.
package index
