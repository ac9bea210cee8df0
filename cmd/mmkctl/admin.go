package main

import (
	"errors"
	"flag"

	"github.com/target/mmk-ui-client/internal/domain/model"
)

func runUsers(cc *commandContext, args []string) error {
	if err := flag.NewFlagSet("users", flag.ContinueOnError).Parse(args); err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.GetAllUsers(cc.Ctx))
}

func runUser(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("user", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.GetUserByID(cc.Ctx, id))
}

func runUserUpdate(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-update", flag.ContinueOnError)
	email := fs.String("email", "", "New email")
	first := fs.String("first-name", "", "New first name")
	last := fs.String("last-name", "", "New last name")
	active := fs.Bool("active", false, "Active flag")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	set := visited(fs)
	in := model.UpdateUserRequest{
		Email:     stringIfSet(set, "email", *email),
		FirstName: stringIfSet(set, "first-name", *first),
		LastName:  stringIfSet(set, "last-name", *last),
		IsActive:  boolIfSet(set, "active", *active),
	}
	return cc.emit(cc.Clients.Admin.UpdateUser(cc.Ctx, id, in))
}

func runUserActivate(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("user-activate", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.ActivateUser(cc.Ctx, id))
}

func runUserDeactivate(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("user-deactivate", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.DeactivateUser(cc.Ctx, id))
}

func runUserDelete(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("user-delete", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.DeleteUser(cc.Ctx, id))
}

func runUserRoles(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("user-roles", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.GetUserRoles(cc.Ctx, id))
}

func runRoleAssign(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("role-assign", flag.ContinueOnError)
	role := fs.String("role", "", "Role name")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.AssignRole(cc.Ctx, id, model.RoleAssignment{RoleName: *role}))
}

func runRoleRemove(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("role-remove", flag.ContinueOnError)
	role := fs.String("role", "", "Role name")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.RemoveRole(cc.Ctx, id, *role))
}

func runForceLogout(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("force-logout", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.ForceLogout(cc.Ctx, id))
}

func runPasswordReset(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("password-reset", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.ResetPassword(cc.Ctx, id))
}

func runPasswordChange(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("password-change", flag.ContinueOnError)
	passwordStdin := fs.Bool("password-stdin", false, "Read the new password from the first line of stdin")
	password := fs.String("password", "", "New password (prefer -password-stdin)")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	pw, err := resolvePassword(loginOptions{Password: *password, PasswordStdin: *passwordStdin}, cc.Stdin)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Admin.ChangePassword(cc.Ctx, id, model.PasswordChange{NewPassword: pw}))
}

func runPosts(cc *commandContext, _ []string) error {
	return cc.emit(cc.Clients.Admin.GetAllPosts(cc.Ctx))
}

func runStats(cc *commandContext, _ []string) error {
	return cc.emit(cc.Clients.Admin.GetSystemStats(cc.Ctx))
}

func runOverview(cc *commandContext, _ []string) error {
	ov, err := cc.Clients.Admin.Overview(cc.Ctx)
	if printErr := cc.Out.Print(ov); printErr != nil {
		return errors.Join(printErr, err)
	}
	return err
}

func runRoles(cc *commandContext, _ []string) error {
	return cc.emit(cc.Clients.Roles.GetRoles(cc.Ctx))
}

func runRoleCreate(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("role-create", flag.ContinueOnError)
	name := fs.String("name", "", "Role name")
	perms := fs.String("permissions", "", "Comma separated permission ids")
	if err := fs.Parse(args); err != nil {
		return err
	}
	in := model.RoleInput{Name: *name, Permissions: splitList(*perms)}
	return cc.emit(cc.Clients.Roles.CreateRole(cc.Ctx, in))
}

func runRoleUpdate(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("role-update", flag.ContinueOnError)
	name := fs.String("name", "", "Role name")
	perms := fs.String("permissions", "", "Comma separated permission ids")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	in := model.RoleInput{Name: *name, Permissions: splitList(*perms)}
	return cc.emit(cc.Clients.Roles.UpdateRole(cc.Ctx, id, in))
}

func runRoleDelete(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("role-delete", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Roles.DeleteRole(cc.Ctx, id))
}

func runPermissions(cc *commandContext, _ []string) error {
	return cc.emit(cc.Clients.Roles.GetPermissions(cc.Ctx))
}
