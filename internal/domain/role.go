package domain

// Role represents a player's secret role
type Role string

const (
	RoleMafia   Role = "mafia"
	RolePolice  Role = "police"
	RoleDoctor  Role = "doctor"
	RoleCitizen Role = "citizen"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsMafia returns true if this role belongs to the mafia faction
func (r Role) IsMafia() bool {
	return r == RoleMafia
}

// NightActionType is the kind of action a role may take at night
type NightActionType string

const (
	ActionKill        NightActionType = "kill"
	ActionSave        NightActionType = "save"
	ActionInvestigate NightActionType = "investigate"
)
