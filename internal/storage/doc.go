// Package storage provides the on-disk layout of the pipeline's data directory.
//
// Every competition gets a directory named after it, holding the downloaded
// competition page (<comp>.html), the link mapping (link_name_mapping.json), the
// downloaded result documents, the raw judge rosters (judges.json) and one parsed
// artifact per protocol document under protocols/. The default location is
// ~/.local/share/skate-protocols/.
//
// All writes go through a temporary file and a rename, so an interrupted run never
// leaves a half-written file behind and artifacts can be treated as immutable.
package storage
