// Package policy holds the role capability table for staff users.
package policy

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
	RoleManager Role = "manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCashier, RoleManager:
		return true
	}
	return false
}

type Action string

const (
	ViewRecords       Action = "view_records"
	ManageClients     Action = "manage_clients"
	ManageGuarantors  Action = "manage_guarantors"
	AdjustBalance     Action = "adjust_balance"
	Reconcile         Action = "reconcile"
	ViewReports       Action = "view_reports"
	CreateTransaction Action = "create_transaction"
	CreateWithdraw    Action = "create_withdraw"
	UpdateSettings    Action = "update_settings"
	ViewAudit         Action = "view_audit"
	ManageUsers       Action = "manage_users"
)

var allRoles = []Role{RoleAdmin, RoleCashier, RoleManager}

var capabilities = map[Action][]Role{
	ViewRecords:       allRoles,
	ManageClients:     {RoleAdmin, RoleCashier},
	ManageGuarantors:  {RoleAdmin, RoleCashier},
	AdjustBalance:     {RoleAdmin, RoleManager},
	Reconcile:         {RoleAdmin, RoleManager},
	ViewReports:       {RoleAdmin, RoleManager},
	CreateTransaction: allRoles,
	CreateWithdraw:    allRoles,
	UpdateSettings:    allRoles,
	ViewAudit:         {RoleAdmin},
	ManageUsers:       {RoleAdmin},
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role Role, action Action) bool {
	for _, permitted := range capabilities[action] {
		if permitted == role {
			return true
		}
	}
	return false
}
