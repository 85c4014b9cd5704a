// Package main provides the entry point for GoInsights-Admin, a web-based
// login and administration service for a business-intelligence dashboard
// platform. It runs a Fiber web server with local and OAuth2 logins against
// the onadata and openlmis identity providers, persists users, roles and
// permissions with gorm, and provisions custom roles from configuration at
// startup.
package main
