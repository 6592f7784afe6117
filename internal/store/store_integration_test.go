// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

//go:build integration

package store_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/repository"
	"github.com/scmprops/scmprops/internal/search"
	"github.com/scmprops/scmprops/internal/store"
)

var _ = Describe("PostgreSQL stores", func() {
	var (
		repos *store.RepositoryStore
		api   repository.Repository
	)

	BeforeEach(func(ctx SpecContext) {
		resetTables(ctx)
		repos = store.NewRepositoryStore(pool)

		var err error
		api, err = repository.New("platform", "api")
		Expect(err).NotTo(HaveOccurred())
		Expect(repos.Create(ctx, api)).To(Succeed())
	})

	Describe("RepositoryStore", func() {
		It("rejects a second repository with the same name", func(ctx SpecContext) {
			dup, err := repository.New("platform", "api")
			Expect(err).NotTo(HaveOccurred())
			Expect(repos.Create(ctx, dup)).To(MatchError(repository.ErrAlreadyExists))
		})

		It("lists repositories by namespace and tracks archival", func(ctx SpecContext) {
			tool, err := repository.New("tools", "lint")
			Expect(err).NotTo(HaveOccurred())
			Expect(repos.Create(ctx, tool)).To(Succeed())
			Expect(repos.SetArchived(ctx, tool.ID, true)).To(Succeed())

			all, err := repos.All(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			inTools, err := repos.ByNamespace(ctx, "tools")
			Expect(err).NotTo(HaveOccurred())
			Expect(inTools).To(ConsistOf(HaveField("Archived", true)))
		})
	})

	Describe("PropertyStore", func() {
		It("upserts and removes properties", func(ctx SpecContext) {
			props := store.NewPropertyStore(pool)
			Expect(props.Put(ctx, api.ID, property.CustomProperty{Key: "lang", Value: "go"})).To(Succeed())
			Expect(props.Put(ctx, api.ID, property.CustomProperty{Key: "lang", Value: "go\tjava"})).To(Succeed())

			got, found, err := props.Get(ctx, api.ID, "lang")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(got.Values()).To(Equal([]string{"go", "java"}))

			Expect(props.Remove(ctx, api.ID, "lang")).To(Succeed())
			all, err := props.GetAll(ctx, api.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})
	})

	Describe("ConfigStore", func() {
		It("round-trips global and namespace configuration", func(ctx SpecContext) {
			configs := store.NewConfigStore(pool)

			_, found, err := configs.GlobalConfig(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())

			global := predefined.DefaultGlobalConfig()
			global.PredefinedKeys["lang"] = predefined.Key{Mode: predefined.ModeMandatory}
			Expect(configs.SetGlobalConfig(ctx, global)).To(Succeed())

			stored, found, err := configs.GlobalConfig(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(stored.PredefinedKeys).To(HaveKeyWithValue("lang", predefined.Key{Mode: predefined.ModeMandatory}))

			ns := predefined.NamespaceConfig{PredefinedKeys: map[string]predefined.Key{
				"team": {Mode: predefined.ModeDefault, DefaultValue: "core"},
			}}
			Expect(configs.SetNamespaceConfig(ctx, "platform", ns)).To(Succeed())
			storedNS, found, err := configs.NamespaceConfig(ctx, "platform")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(storedNS).To(Equal(ns))
		})
	})

	Describe("SearchIndex", func() {
		It("stores entries idempotently and deletes them by scope", func(ctx SpecContext) {
			index := store.NewSearchIndex(pool)
			for _, value := range []string{"go", "java", "go"} {
				id := search.EntryID{RepositoryID: api.ID, Key: "lang", Value: value}
				Expect(index.Store(ctx, search.Entry{
					ID:        id,
					Namespace: api.Namespace,
					ACL:       search.ReadPermission(api.ID),
					Document:  search.NewIndexedProperty("lang", value),
				})).To(Succeed())
			}

			entries, err := index.Entries(ctx, api.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))

			Expect(index.Delete(ctx, search.EntryID{RepositoryID: api.ID, Key: "lang", Value: "go"})).To(Succeed())
			entries, err = index.Entries(ctx, api.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(ConsistOf(HaveField("Document.Value", "java")))

			Expect(index.DeleteByRepository(ctx, api.ID)).To(Succeed())
			entries, err = index.Entries(ctx, api.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("records the schema version", func(ctx SpecContext) {
			log := store.NewIndexLog(pool)
			Expect(log.Log(ctx, search.SchemaTag, 1)).To(Succeed())
			Expect(log.Log(ctx, search.SchemaTag, search.SchemaVersion)).To(Succeed())

			version, found, err := log.Version(ctx, search.SchemaTag)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(version).To(Equal(search.SchemaVersion))
		})
	})
})
