// Package jobs persists asynchronous jobs in SQLite and runs their work on a
// bounded pool.
//
// A job moves queued -> running -> succeeded|failed. The Store records the
// payload of successful jobs, the error message of failed ones, and the time
// each job spent queued before it started. The Runner inserts jobs and
// executes the supplied work function under a weighted semaphore so the number
// of concurrently running jobs stays within the configured limit no matter
// how many jobs a caller submits at once.
//
// The database is transient state for in-flight work. Schema changes bump
// the version in schema.go; users clear the database to adopt the new schema.
package jobs
