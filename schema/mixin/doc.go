// Package mixin provides reusable schema components for Velox ORM.
//
// Mixins allow sharing common fields, edges, hooks, and policies across
// multiple entity schemas. This promotes code reuse and consistency.
//
// # Built-in Mixins
//
// The package provides several ready-to-use mixins:
//
//	// ID mixin (contrib/mixin): Adds a UUID id field
//	mixin.ID{}
//
//	// Time mixin: Adds created_at and updated_at timestamps
//	mixin.Time{}
//
//	// SoftDelete mixin: Adds deleted_at for soft deletes
//	mixin.SoftDelete{}
//
//	// TenantID mixin (contrib/mixin): Adds tenant_id for multi-tenancy
//	mixin.TenantID{}
//
//	// TimeSoftDelete: Combines Time and SoftDelete
//	mixin.TimeSoftDelete{}
//
// # Using Mixins
//
// Mixins are applied to schemas via the Mixin() method:
//
//	type User struct{ velox.Schema }
//
//	func (User) Mixin() []velox.Mixin {
//	    return []velox.Mixin{
//	        mixin.ID{},
//	        mixin.Time{},
//	    }
//	}
//
// The resulting User entity will have:
//   - id (uuid.UUID, primary key, defaults to uuid.New)
//   - created_at (time.Time, immutable)
//   - updated_at (time.Time, auto-updated)
//
// # Creating Custom Mixins
//
// Custom mixins implement the velox.Mixin interface:
//
//	type AuditMixin struct {
//	    velox.Mixin
//	}
//
//	func (AuditMixin) Fields() []velox.Field {
//	    return []velox.Field{
//	        field.String("created_by"),
//	        field.String("updated_by").Optional(),
//	    }
//	}
//
//	func (AuditMixin) Hooks() []velox.Hook {
//	    return []velox.Hook{
//	        // Hook to set created_by/updated_by from context
//	    }
//	}
//
// # Mixin Order
//
// Mixins are applied in the order they are listed, before the schema's own
// fields. Fields cannot be overridden: two fields with the same column name
// make descriptor resolution fail with a MetadataError.
//
//	func (User) Mixin() []velox.Mixin {
//	    return []velox.Mixin{
//	        BaseMixin{},      // Applied first
//	        AuditMixin{},     // Applied second
//	        TenantMixin{},    // Applied third
//	    }
//	}
//
// # Mixin Features
//
// Mixins can provide:
//
//   - Fields: Common fields shared across entities
//   - Edges: Common relationships
//   - Indexes: Common database indexes
//   - Hooks: Mutation hooks (before/after create, update, delete)
//   - Interceptors: Query interceptors
//   - Policy: Privacy/authorization rules
//   - Annotations: Custom annotations for generators
//
// # ID Mixin
//
// The ID mixin (contrib/mixin) adds a UUID primary key:
//
//	type ID struct{ mixin.Schema }
//
//	func (ID) Fields() []velox.Field {
//	    return []velox.Field{
//	        field.UUID("id", uuid.UUID{}).
//	            Default(uuid.New).
//	            Immutable(),
//	    }
//	}
//
// # Time Mixin
//
// The Time mixin adds timestamp tracking:
//
//	type Time struct{ velox.Mixin }
//
//	func (Time) Fields() []velox.Field {
//	    return []velox.Field{
//	        field.Time("created_at").
//	            Default(time.Now).
//	            Immutable(),
//	        field.Time("updated_at").
//	            Default(time.Now).
//	            UpdateDefault(time.Now),
//	    }
//	}
//
// # SoftDelete Mixin
//
// The SoftDelete mixin enables soft deletion:
//
//	type SoftDelete struct{ velox.Mixin }
//
//	func (SoftDelete) Fields() []velox.Field {
//	    return []velox.Field{
//	        field.Time("deleted_at").
//	            Optional().
//	            Nillable(),
//	    }
//	}
//
// # TenantID Mixin
//
// The TenantID mixin enables multi-tenant isolation:
//
//	type TenantID struct{ velox.Mixin }
//
//	func (TenantID) Fields() []velox.Field {
//	    return []velox.Field{
//	        field.String("tenant_id").
//	            Immutable(),
//	    }
//	}
//
// TenantID declares no Policy; a schema using it can declare its own:
//
//	func (User) Policy() velox.Policy {
//	    return privacy.Policy{
//	        Query:    privacy.QueryPolicy{privacy.TenantQueryRule()},
//	        Mutation: privacy.MutationPolicy{privacy.TenantRule("tenant_id")},
//	    }
//	}
package mixin
