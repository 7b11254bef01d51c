// Package loader reads the space missions CSV into a mission.Dataset.
//
// Loading happens once at startup. Any problem with the source (missing
// file, unreadable bytes, absent required columns, unparseable cells) is
// reported as a *DataLoadError carrying the source name, line and column,
// and the caller is expected to treat it as fatal.
//
// Headers are matched through the mission field registry, so "Company",
// "company" and "agency" all bind to the same column. Cell text is
// NFC-normalized and trimmed. A leading UTF-8 byte order mark is dropped.
// A file with a header row and no data rows is a valid empty dataset.
package loader
