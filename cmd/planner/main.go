// @title                       AhorraT Weekly Planner API
// @version                     1.0
// @description                 Roles, objectives and weekly activities with guest and remote workspaces.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
