package root

import (
	"github.com/zenGate-Global/palmyra-gym/apps/cli/cmd/auth"
	migratecmd "github.com/zenGate-Global/palmyra-gym/apps/cli/cmd/migrate"
	tenantcmd "github.com/zenGate-Global/palmyra-gym/apps/cli/cmd/tenant"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(migratecmd.Command())
	Root().AddCommand(tenantcmd.Command())
}
