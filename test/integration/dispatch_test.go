// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/modhost/modhost/internal/callback"
	"github.com/modhost/modhost/internal/luahost"
	"github.com/modhost/modhost/internal/script"
)

func writeScriptDir(root, name, code string) {
	dir := filepath.Join(root, name)
	Expect(os.MkdirAll(dir, 0o750)).To(Succeed())

	manifest := "name: " + name + "\nversion: 1.0.0\napi_version: '>= 1.0'\nentry: main.lua\n"
	Expect(os.WriteFile(filepath.Join(dir, "script.yaml"), []byte(manifest), 0o600)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "main.lua"), []byte(code), 0o600)).To(Succeed())
}

var _ = Describe("Script dispatch", func() {
	var (
		registry *callback.Registry
		host     *luahost.Host
		root     string
	)

	BeforeEach(func() {
		registry = callback.NewRegistry(func() callback.Context { return script.NewContext() })
		host = luahost.NewHost(registry)
		root = GinkgoT().TempDir()
	})

	AfterEach(func() {
		Expect(host.Close(context.Background())).To(Succeed())
		registry.ClearAllCallbacks()
	})

	It("dispatches one callback through listeners from several scripts", func() {
		cb := registry.CreateCallback("on-join")

		writeScriptDir(root, "first", `
modhost.register_callback("on-join", function(ctx)
    ctx.set_result("first:" .. ctx.args[1])
end)
`)
		writeScriptDir(root, "second", `
modhost.register_callback("on-join", function(ctx)
    ctx.set_result("second:" .. ctx.args[1])
end)
`)

		Expect(host.LoadAll(context.Background(), root)).To(Succeed())
		Expect(host.Scripts()).To(ConsistOf("first", "second"))
		Expect(cb.Len()).To(Equal(2))

		sc := cb.Context().(*script.Context)
		sc.PushArg("alice")
		cb.Execute(true)

		// Context was reset after the pass.
		Expect(sc.ArgCount()).To(BeZero())
		Expect(sc.Result()).To(BeNil())
	})

	It("keeps dispatching when one script's listener faults", func() {
		cb := registry.CreateCallback("on-damage")

		writeScriptDir(root, "faulty", `
modhost.register_callback("on-damage", function(ctx)
    error("scripted disaster")
end)
`)
		writeScriptDir(root, "steady", `
modhost.register_callback("on-damage", function(ctx)
    ctx.set_result("handled")
end)
`)

		Expect(host.LoadAll(context.Background(), root)).To(Succeed())
		Expect(cb.Len()).To(Equal(2))

		cb.Execute(false)

		sc := cb.Context().(*script.Context)
		Expect(sc.Result()).To(Equal("handled"))
		_, signalled := sc.NativeError()
		Expect(signalled).To(BeTrue())
	})

	It("withdraws a script's listeners on unload", func() {
		cb := registry.CreateCallback("tick")

		writeScriptDir(root, "ticker", `
modhost.register_callback("tick", function(ctx) end)
`)

		Expect(host.LoadAll(context.Background(), root)).To(Succeed())
		Expect(cb.Len()).To(Equal(1))

		Expect(host.Unload(context.Background(), "ticker")).To(Succeed())
		Expect(cb.Len()).To(BeZero())
	})

	It("tears down the registry under loaded scripts without crashing", func() {
		registry.CreateCallback("tick")
		writeScriptDir(root, "ticker", `
modhost.register_callback("tick", function(ctx) end)
`)
		Expect(host.LoadAll(context.Background(), root)).To(Succeed())

		registry.ClearAllCallbacks()
		Expect(registry.FindCallback("tick")).To(BeNil())

		// Unloading after teardown must tolerate the vanished callbacks.
		Expect(host.Close(context.Background())).To(Succeed())
	})
})
