package di_test

import (
	"context"
	"fmt"

	di "github.com/0xalexb/hjarta-config"
	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/config/tree"

	vaultapi "github.com/hashicorp/vault/api"
	"go.uber.org/fx"
)

// StaticKV serves Vault KV v2 reads from memory.
type StaticKV map[string]map[string]any

// Get implements the Vault KV accessor used by the vault provider.
func (kv StaticKV) Get(_ context.Context, path string) (*vaultapi.KVSecret, error) {
	return &vaultapi.KVSecret{Data: kv[path]}, nil
}

// ServerService is a service that depends on the resolved configuration.
type ServerService struct {
	Host     string
	Port     any
	Password any
}

// Address returns the server address from config.
func (s *ServerService) Address() string {
	return fmt.Sprintf("%s:%v", s.Host, s.Port)
}

// NewServerService reads its settings from the configuration tree.
func NewServerService(cfg *tree.Tree) *ServerService {
	host, _ := cfg.Find("server", "host")
	port, _ := cfg.Find("server", "port")
	password, _ := cfg.Find("server", "password")

	hostName, _ := host.(string)

	return &ServerService{Host: hostName, Port: port, Password: password}
}

// Example_appWithConfigIntegration demonstrates loading layered files and
// resolving Vault references inside an App.
func Example_appWithConfigIntegration() {
	kv := StaticKV{"orders/api": {"token": "t0k3n", "user": "orders"}}

	var service *ServerService

	app := di.NewApp(
		di.WithLogLevel("error"),
		di.WithConfig(
			config.WithRootDir("./testdata"),
			config.WithFiles("config.yaml", "config.local.json"),
			config.WithProviderKind("vault"),
			config.WithClient(kv),
		),
		di.WithModules(
			fx.Provide(NewServerService),
			fx.Invoke(func(s *ServerService) {
				service = s
			}),
		),
	)

	err := app.Start()
	if err != nil {
		fmt.Printf("Error starting app: %v\n", err)

		return
	}

	defer func() { _ = app.Stop() }()

	fmt.Printf("Server address: %s\n", service.Address())
	fmt.Printf("Password: %v\n", service.Password)
	// Output:
	// Server address: api.example.com:9443
	// Password: t0k3n
}
