// Package model describes the base objects manipulated by datagit.
//
// The object model for datagit is composed of:
//
//  Entities:
//    An entity type groups versioned datasets of a same kind: dataset, labels or model.
//
//  Specs:
//    A spec file describes one versioned entity: its categories, name, version
//    and the remote backend holding its content.
//
//  Tags:
//    A tag identifies a committed version of a spec, as in: categories__name__version.
//
//  Layout:
//    The layout locates the block stores, indexes, cache and metadata of an entity type
//    on the local file system.
package model
