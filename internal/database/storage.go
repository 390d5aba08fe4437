package database

const DB_SCHEMA = `CREATE TABLE Version (
	ID integer PRIMARY KEY AUTOINCREMENT,
	Name text,
	Version integer
);

CREATE TABLE Property (
	Name text PRIMARY KEY,
	Value text
);

CREATE TABLE SyncRun (
	ID text PRIMARY KEY,
	Sheet text,
	State text,
	Started text,
	Finished text,
	Processed integer,
	Created integer,
	Updated integer,
	Skipped integer,
	Errors integer
);
`

const DB_VERSION = 1
