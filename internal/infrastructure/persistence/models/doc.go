// Package models contains the gorm persistence models behind the repositories.
// Domain entities stay free of gorm tags, each model maps to one table and
// converts to and from its entity with ToDomain/FromDomain.
//
// Tables:
//   - users: identity.User
//   - customers: invoicing.Customer
//   - invoices, invoice_items: invoicing.Invoice and its items
//   - payments: invoicing.Payment
package models
