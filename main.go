package main

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/app"
)

// @title           OTP Gate API
// @version         1.0
// @description     OTP Gate issues and verifies one-time email codes and throttles abuse per identity.
// @contact.name    Contact Support
// @contact.email   support@otpgate.dev
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by an operator JWT.
func main() {
	gate := app.New()

	<-gate.Start()

	ctx, cancel := context.WithTimeout(context.Background(), gate.ShutdownTimeout())
	defer cancel()

	gate.Stop(ctx)
}
