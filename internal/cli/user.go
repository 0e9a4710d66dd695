package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// listAdminsSQL joins through the group relation tables to find every
// user in the base.group_system group.
const listAdminsSQL = `
    SELECT ru.login, rp.name
    FROM res_users ru
    JOIN res_groups_users_rel gurel ON ru.id = gurel.uid
    JOIN res_groups rg ON gurel.gid = rg.id
    JOIN ir_model_data imd ON imd.res_id = rg.id AND imd.model = 'res.groups'
    JOIN res_partner rp ON ru.partner_id = rp.id
    WHERE imd.module = 'base' AND imd.name = 'group_system';
`

type manageUserCmd struct {
	database   string
	user       string
	password   string
	listAdmins bool
}

// NewManageUserCommand creates the manage-user command.
func NewManageUserCommand() *cobra.Command {
	m := &manageUserCmd{}

	cmd := &cobra.Command{
		Use:   "manage-user",
		Short: "Manage database users",
		RunE:  m.run,
	}

	cmd.Flags().StringVarP(&m.database, "database", "d", "", "Database name")
	cmd.Flags().StringVarP(&m.user, "user", "u", "", "User to update")
	cmd.Flags().StringVarP(&m.password, "password", "p", "", "Custom password to set (default from .env)")
	cmd.Flags().BoolVar(&m.listAdmins, "list-admins", false, "List admin users")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

func (m *manageUserCmd) run(cmd *cobra.Command, args []string) error {
	settings, err := loadProject()
	if err != nil {
		return err
	}

	if m.listAdmins {
		log.Info("admin users", "database", m.database)
		return psql(cmd, settings, m.database, listAdminsSQL)
	}

	if m.user == "" {
		return fmt.Errorf("must specify user with -u or use --list-admins")
	}

	password := m.password
	if password == "" {
		password = settings.ResetPassword
	}

	// Sets a plaintext password; Odoo rehashes it on the user's next
	// login.
	updateSQL := fmt.Sprintf("UPDATE res_users SET password = '%s' WHERE login = '%s';", password, m.user)
	if err := psql(cmd, settings, m.database, updateSQL); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	log.Info("password reset", "user", m.user, "database", m.database)
	return nil
}
