// Package dataset turns parsed protocol artifacts into the final score table.
//
// Every protocol row is melted into one row per judge, the judge score is standardized
// within its element across the panel, and the competition attributes are derived from
// the competition directory and the category. The table can be written as CSV or into
// a SQLite database next to the cleaned judge rosters.
package dataset
