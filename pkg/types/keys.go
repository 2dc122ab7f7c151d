package types

// Storage keys. Users keep the historical "taskflow_users" key so existing
// stored data stays readable; the other collections use the mock prefix.
const (
	KeyTasks       = "taskflow_mock_tasks"
	KeyUsers       = "taskflow_users"
	KeyWorkspaces  = "taskflow_mock_workspaces"
	KeyTeams       = "taskflow_mock_teams"
	KeyConfig      = "taskflow_mock_config"
	KeyAuthSession = "taskflow_auth_session"
)

// StoragePrefix is shared by every key above. Disabling persistence removes
// all keys carrying it.
const StoragePrefix = "taskflow_"

// Service names used in SimulationConfig.EnabledServices.
const (
	ServiceTasks      = "tasks"
	ServiceUsers      = "users"
	ServiceWorkspaces = "workspaces"
	ServiceTeams      = "teams"
	ServiceAuth       = "auth"
)

// StandardServiceNames lists all service names for enumeration.
var StandardServiceNames = []string{
	ServiceTasks,
	ServiceUsers,
	ServiceWorkspaces,
	ServiceTeams,
	ServiceAuth,
}
