// Persistent record of switcharoo submissions, stored in a SQL database via gorm.
//
// The most recent "good" entry is what new submissions are expected to link to.
package history
