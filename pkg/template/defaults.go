package template

// Defaults returns the stock templates covering the common operational
// notifications: migration lifecycle events, performance alerts, and
// resource warnings. Register them selectively or all at once:
//
//	for _, t := range template.Defaults() {
//	    _ = registry.Register(t)
//	}
func Defaults() []Template {
	return []Template{
		{
			Name:    "migration_started",
			Subject: "Migration Operation Started - {{migration_id}}",
			Body: `<html>
<body>
	<h2>Migration Operation Started</h2>
	<p><strong>Migration ID:</strong> {{migration_id}}</p>
	<p><strong>Start Time:</strong> {{start_time}}</p>
	<p><strong>Source:</strong> {{source}}</p>
	<p><strong>Destination:</strong> {{destination}}</p>
	<p>The migration operation has been initiated successfully.</p>
</body>
</html>`,
			Variables: []string{"migration_id", "start_time", "source", "destination"},
		},
		{
			Name:    "migration_completed",
			Subject: "Migration Operation Completed - {{migration_id}}",
			Body: `<html>
<body>
	<h2>Migration Operation Completed</h2>
	<p><strong>Migration ID:</strong> {{migration_id}}</p>
	<p><strong>Status:</strong> {{status}}</p>
	<p><strong>Duration:</strong> {{duration}}</p>
	<p><strong>Items Migrated:</strong> {{items_count}}</p>
	<p><strong>Completion Time:</strong> {{completion_time}}</p>
	<p>{{additional_info}}</p>
</body>
</html>`,
			Variables: []string{"migration_id", "status", "duration", "items_count", "completion_time", "additional_info"},
		},
		{
			Name:    "migration_error",
			Subject: "Migration Operation Failed - {{migration_id}}",
			Body: `<html>
<body>
	<h2>Migration Operation Failed</h2>
	<p><strong>Migration ID:</strong> {{migration_id}}</p>
	<p><strong>Error:</strong> {{error_message}}</p>
	<p><strong>Failed Items:</strong> {{failed_count}}</p>
	<p><strong>Failure Time:</strong> {{failure_time}}</p>
	<p><strong>Recommended Action:</strong> {{action}}</p>
	<p>Please review the error details and take appropriate action.</p>
</body>
</html>`,
			Variables: []string{"migration_id", "error_message", "failed_count", "failure_time", "action"},
		},
		{
			Name:    "performance_alert",
			Subject: "Performance Alert - {{alert_type}}",
			Body: `<html>
<body>
	<h2>Performance Alert</h2>
	<p><strong>Alert Type:</strong> {{alert_type}}</p>
	<p><strong>Metric:</strong> {{metric}}</p>
	<p><strong>Current Value:</strong> {{current_value}}</p>
	<p><strong>Threshold:</strong> {{threshold}}</p>
	<p><strong>Timestamp:</strong> {{timestamp}}</p>
	<p>Performance monitoring has detected an issue that requires attention.</p>
</body>
</html>`,
			Variables: []string{"alert_type", "metric", "current_value", "threshold", "timestamp"},
		},
		{
			Name:    "resource_warning",
			Subject: "Resource Warning - {{resource_type}}",
			Body: `<html>
<body>
	<h2>Resource Warning</h2>
	<p><strong>Resource Type:</strong> {{resource_type}}</p>
	<p><strong>Usage Level:</strong> {{usage_level}}%</p>
	<p><strong>Warning Threshold:</strong> {{threshold}}%</p>
	<p><strong>Timestamp:</strong> {{timestamp}}</p>
	<p>Resource usage has exceeded acceptable limits.</p>
</body>
</html>`,
			Variables: []string{"resource_type", "usage_level", "threshold", "timestamp"},
		},
	}
}
