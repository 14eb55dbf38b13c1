package postgres

// SQL for the catalog (eventbases) and milestone stores.

const (
	// querySaveEventbase inserts a definition with its caller-assigned
	// UID. ON CONFLICT DO NOTHING makes duplicate creation visible as
	// zero affected rows instead of a driver error.
	querySaveEventbase = `
		INSERT INTO eventbases (uid, date_year, date_month, date_day, title, actor)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid) DO NOTHING
	`

	// queryUpdateEventbase rewrites every editable field; the UID never
	// changes.
	queryUpdateEventbase = `
		UPDATE eventbases
		SET date_year = $2, date_month = $3, date_day = $4, title = $5, actor = $6
		WHERE uid = $1
	`

	// queryDeleteEventbase removes a definition. Milestones cascade via
	// the foreign key.
	queryDeleteEventbase = `
		DELETE FROM eventbases WHERE uid = $1
	`

	queryListEventbases = `
		SELECT uid, date_year, date_month, date_day, title, actor
		FROM eventbases
		ORDER BY uid ASC
	`

	// queryDeleteMilestone and queryInsertMilestone together implement
	// the delete-old/put-new replacement inside one transaction.
	queryDeleteMilestone = `
		DELETE FROM milestones WHERE date_year = $1 AND eventbase_uid = $2
	`

	queryInsertMilestone = `
		INSERT INTO milestones (date_year, eventbase_uid, state, next_reminder_at, story)
		VALUES ($1, $2, $3, $4, $5)
	`

	queryListMilestones = `
		SELECT date_year, eventbase_uid, state, next_reminder_at, story
		FROM milestones
		ORDER BY date_year ASC, eventbase_uid ASC
	`
)
