// Package main FastOrder API
//
//	@title						FastOrder API
//	@version					1.0
//	@description				Restaurant order lifecycle and payment confirmation
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Orders
//	@tag.description			Order creation, combos and status changes
//
//	@tag.name					Boards
//	@tag.description			Kitchen queue and customer monitor
//
//	@tag.name					Payments
//	@tag.description			Payment confirmation and acquirer webhooks
package main
