package main

import (
	"log"

	"realtycrm/internal/app"
)

// @title                       Realty CRM API
// @version                     1.0
// @description                 Filtered leads, opportunities and site visits for the CRM dashboard.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
