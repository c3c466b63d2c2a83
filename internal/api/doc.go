// Package api provides the BuildCRM REST API.
//
//	@title						BuildCRM API
//	@version					1.0
//	@description				Multi-tenant CRM for construction businesses
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package api
