package constants

// Centralized constants for headers, env keys, routes and log fields.
const (
	// Environment variable keys
	EnvConfigPath          = "RPG_BATTLE_CONFIG"
	EnvServerAddress       = "RPG_BATTLE_ADDR"
	EnvDatabasePath        = "RPG_BATTLE_DB"
	EnvProfileDir          = "RPG_BATTLE_PROFILE_DIR"
	EnvDiscordClientID     = "DISCORD_CLIENT_ID"
	EnvDiscordClientSecret = "DISCORD_CLIENT_SECRET"
	EnvClientURL           = "CLIENT_URL"

	DefaultConfigPath    = "./rpg_battle.yaml"
	DefaultServerAddress = ":3001"
	DefaultDatabasePath  = "./data/rpg_battle.db"
	DefaultLocalOrigin   = "http://localhost:5173"

	// HTTP headers and content types
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
	HeaderOrigin      = "Origin"

	CacheControlHeader  = "Cache-Control"
	CacheControlNoCache = "no-cache, no-store, must-revalidate"

	// Discord OAuth endpoints used by the token relay
	DiscordAuthURL  = "https://discord.com/api/oauth2/authorize"
	DiscordTokenURL = "https://discord.com/api/oauth2/token"
)

// Routes used by the backend router
const (
	RouteHealth            = "/healthz"
	RouteAPIPrefix         = "/api"
	RouteVersion           = "/version"
	RouteToken             = "/token"
	RouteCombatants        = "/combatants"
	RouteCombatantByName   = "/combatants/:name"
	RouteCombatantAdd      = "/combatants/:name/add"
	RouteCombatantProfile  = "/combatants/:name/profile"
	RouteRosterActive      = "/roster/active"
	RouteRosterParticipant = "/roster/participants/:participantID"
	RouteRosterActivate    = "/roster/activate"
	RouteRosterGive        = "/roster/give"
	RouteRosterResolve     = "/roster/resolve"
	RouteBattleQueue       = "/battle-queue"
	RouteBattleQueueActing = "/battle-queue/:channel/acting"
	RouteBattleQueueStream = "/battle-queue/stream"
	QueryChannel           = "channel"
	QueryMatch             = "match"
	QueryParticipantID     = "id"
	QueryUsername          = "username"
	QueryBot               = "bot"
	ParamName              = "name"
	ParamParticipantID     = "participantID"
	ParamChannel           = "channel"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyDetails = "details"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest        = "Invalid request"
	ErrResourceNotFound      = "Not found"
	ErrCombatantExists       = "Combatant already exists"
	ErrProfileNotFound       = "Profile not found"
	ErrNoActiveCombatant     = "No active combatant"
	ErrChannelRequired       = "channel query parameter is required"
	ErrFailedFetchCombatants = "Failed to fetch combatants"
	ErrFailedCreateCombatant = "Failed to create combatant"
	ErrFailedUpdateCombatant = "Failed to update combatant"
	ErrFailedDeleteCombatant = "Failed to delete combatant"
	ErrFailedActivate        = "Failed to activate combatant"
	ErrFailedGive            = "Failed to reassign combatant"
	ErrFailedFetchQueue      = "Failed to fetch battle queue"
	ErrFailedUpdateQueue     = "Failed to update battle queue"
	ErrFailedEncode          = "Failed to encode response"
	ErrMissingDiscordEnv     = "Missing DISCORD_CLIENT_ID/DISCORD_CLIENT_SECRET in environment"
	ErrFailedExchangeToken   = "Failed to exchange token"
	ErrCodeRequired          = "Authorization code is required"
	ErrMissingClientURL      = "Server configuration incomplete: CLIENT_URL not set"
)

// Logging field names
const (
	LogFieldName     = "name"
	LogFieldKey      = "key"
	LogFieldTwin     = "twin"
	LogFieldRejected = "rejected"
	LogFieldChannel  = "channel"
	LogFieldActing   = "acting"
	LogFieldPartID   = "participant_id"
	LogFieldUsername = "username"
	LogFieldAddr     = "addr"
	LogFieldPath     = "path"
	LogFieldRemote   = "remote"
	LogFieldAttempt  = "attempt"
)
