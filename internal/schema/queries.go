// DML executed by the run stages: bulk COPY from S3, set-based dimension and
// fact derivation, and the row-level inserts of the latest-state passes.
package schema

import "fmt"

// qualifyingPage is the only event action that counts as a song play. The fact
// join and both latest-state passes filter on it.
const qualifyingPage = "NextSong"

// CopyEvents renders the bulk-load statement for the activity log. The
// jsonpaths file maps raw log fields onto staging_events columns.
//
// All three interpolated values come from validated configuration; the config
// linter rejects values containing single quotes.
func CopyEvents(logData, jsonPath, roleARN, region string) string {
	return fmt.Sprintf(`copy staging_events from '%s'
	credentials 'aws_iam_role=%s'
	region '%s'
	json '%s'`, logData, roleARN, region, jsonPath)
}

// CopySongs renders the bulk-load statement for the song catalog. Catalog
// records are flat JSON objects, so auto mapping suffices.
func CopySongs(songData, roleARN, region string) string {
	return fmt.Sprintf(`copy staging_songs from '%s'
	credentials 'aws_iam_role=%s'
	region '%s'
	format as json 'auto'`, songData, roleARN, region)
}

// InsertSongs derives the songs dimension from the staging catalog.
//
// SELECT DISTINCT collapses exact duplicates within the staging batch; the
// NOT EXISTS guard makes re-runs idempotent because the engine does not
// enforce the primary key.
const InsertSongs = `insert into songs (song_id, title, artist_id, year, duration)
select distinct s.song_id, s.title, s.artist_id, s.year, s.duration
from staging_songs s
where s.song_id is not null
  and not exists (select 1 from songs t where t.song_id = s.song_id)`

// InsertArtists derives the artists dimension, same policy as InsertSongs.
const InsertArtists = `insert into artists (artist_id, name, location, latitude, longitude)
select distinct s.artist_id, s.artist_name, s.artist_location, s.artist_latitude, s.artist_longitude
from staging_songs s
where s.artist_id is not null
  and not exists (select 1 from artists t where t.artist_id = s.artist_id)`

// InsertSongplays derives the fact table via an exact equality join on
// (artist name, track title, duration), restricted to qualifying events.
//
// The join is deliberately exact: no duration tolerance, no case folding.
// Events with no catalog match are dropped from the fact table; the run
// surfaces their count through CountUnmatchedEvents instead of widening the
// join.
const InsertSongplays = `insert into songplays
	(start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
select
	e.ts,
	e.userid,
	e.level,
	s.song_id,
	s.artist_id,
	e.sessionid,
	e.location,
	e.useragent
from staging_events e
join staging_songs s
	on e.artist = s.artist_name
	and e.song = s.title
	and e.length = s.duration
where e.page = '` + qualifyingPage + `'`

// InsertStatements lists the set-based materializer statements in execution
// order: dimensions before the fact that references them.
func InsertStatements() []string {
	return []string{InsertSongs, InsertArtists, InsertSongplays}
}

// SelectEvents pulls every qualifying staging event, newest first. The
// descending ts order is load-bearing: the user pass keeps the first row it
// sees per user id, which under this order is that user's most recent state.
const SelectEvents = `select
	artist, auth, firstname, gender, iteminsession, lastname, length, level,
	location, method, page, registration, sessionid, song, status, ts,
	useragent, userid
from staging_events
where page = '` + qualifyingPage + `'
order by ts desc`

// CountUnmatchedEvents counts qualifying events that found no catalog entry
// under the exact fact join. These rows are silently absent from songplays,
// so the count is reported as an observability signal after materialization.
const CountUnmatchedEvents = `select count(*)
from staging_events e
where e.page = '` + qualifyingPage + `'
  and not exists (
	select 1
	from staging_songs s
	where e.artist = s.artist_name
	  and e.song = s.title
	  and e.length = s.duration
  )`

// InsertUser is the row-level insert used by the latest-state user pass.
const InsertUser = `insert into users (user_id, first_name, last_name, gender, level)
values ($1, $2, $3, $4, $5)`

// InsertTime is the row-level insert used by the latest-state time pass.
const InsertTime = `insert into time (start_time, hour, day, week, month, year, weekday)
values ($1, $2, $3, $4, $5, $6, $7)`
