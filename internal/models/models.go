package models

// ===========================================================================
// Models Index
// Provides the full model list for GORM AutoMigrate.
// ===========================================================================

// AllModels returns every model in dependency order.
// Used by database.AutoMigrate() to create/update tables.
func AllModels() []interface{} {
	return []interface{}{
		&Company{},             // tenant
		&Instance{},            // gateway routing instance
		&Contact{},             // customer identity
		&Conversation{},        // customer thread
		&Message{},             // message log
		&WebhookSubscription{}, // external subscriber
		&WebhookDelivery{},     // fan-out delivery queue
	}
}
