// Package schema holds every SQL statement the ETL job executes, as data.
//
// The warehouse is Amazon Redshift, which speaks the Postgres wire protocol
// but adds its own DDL attributes (distkey, sortkey, diststyle, IDENTITY) and
// does not enforce PRIMARY KEY / FOREIGN KEY constraints. The constraints
// declared below are advisory: dimension uniqueness is enforced by the ETL
// stages, not by the engine.
//
// Two table groups exist:
//
//   - Staging tables (staging_events, staging_songs): untyped landing zones,
//     one row per raw source record, truncated and re-created out of band
//     between runs by cmd/tables.
//   - Star schema (users, songs, artists, time, songplays): the dimensional
//     model the ETL maintains. These accumulate across runs.
package schema

// Staging table and star-schema table names. Stages reference tables through
// these constants so a rename stays a one-line change.
const (
	StagingEventsTable = "staging_events"
	StagingSongsTable  = "staging_songs"
	UsersTable         = "users"
	SongsTable         = "songs"
	ArtistsTable       = "artists"
	TimeTable          = "time"
	SongplaysTable     = "songplays"
)

const createStagingEvents = `create table if not exists staging_events (
	artist varchar(256),
	auth varchar(256),
	firstname varchar(256),
	gender varchar(10),
	iteminsession int,
	lastname varchar(256),
	length numeric(30, 3),
	level varchar(64),
	location varchar(256),
	method varchar(10),
	page varchar(32),
	registration numeric(30, 3),
	sessionid bigint,
	song varchar(256),
	status int,
	ts bigint sortkey,
	useragent varchar(256),
	userid bigint
) diststyle auto`

const createStagingSongs = `create table if not exists staging_songs (
	num_songs int,
	artist_id varchar(256),
	artist_latitude double precision,
	artist_longitude double precision,
	artist_location varchar(256),
	artist_name varchar(256),
	song_id varchar(256),
	title varchar(256),
	duration numeric(30, 10),
	year int
) diststyle all`

const createUsers = `create table if not exists users (
	user_id bigint not null primary key distkey,
	first_name varchar(256),
	last_name varchar(256) sortkey,
	gender varchar(8),
	level varchar(64)
) diststyle key`

const createArtists = `create table if not exists artists (
	artist_id varchar(256) not null primary key,
	name varchar(256),
	location varchar(256) sortkey,
	latitude double precision,
	longitude double precision
) diststyle all`

const createSongs = `create table if not exists songs (
	song_id varchar(256) not null primary key distkey,
	title varchar(256),
	artist_id varchar(256) not null,
	year int sortkey,
	duration numeric(30, 10),
	foreign key (artist_id) references artists (artist_id)
) diststyle key`

const createTime = `create table if not exists time (
	start_time bigint not null primary key distkey sortkey,
	hour int,
	day int,
	week int,
	month int,
	year int,
	weekday int
) diststyle key`

const createSongplays = `create table if not exists songplays (
	songplay_id int identity(0, 1) primary key distkey,
	start_time bigint not null sortkey,
	user_id bigint not null,
	level varchar(64),
	song_id varchar(256) not null,
	artist_id varchar(256) not null,
	session_id varchar(256),
	location varchar(256),
	user_agent varchar(256),
	foreign key (user_id) references users (user_id),
	foreign key (song_id) references songs (song_id),
	foreign key (artist_id) references artists (artist_id)
) diststyle key`

// CreateStatements lists the CREATE TABLE statements in dependency order:
// staging first, then dimensions referenced by foreign keys, then the fact.
func CreateStatements() []string {
	return []string{
		createStagingEvents,
		createStagingSongs,
		createUsers,
		createArtists,
		createSongs,
		createTime,
		createSongplays,
	}
}

// DropStatements lists DROP TABLE statements in reverse dependency order so a
// full teardown succeeds even on engines that check references.
func DropStatements() []string {
	return []string{
		"drop table if exists songplays",
		"drop table if exists time",
		"drop table if exists songs cascade",
		"drop table if exists artists cascade",
		"drop table if exists users cascade",
		"drop table if exists staging_songs",
		"drop table if exists staging_events",
	}
}
