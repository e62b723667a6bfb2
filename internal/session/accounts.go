package session

import (
	"gdconnect/internal/relay"
	"gdconnect/pkg/oauth"
)

// Account is an identity a user can authenticate as. The roster is fixed
// and small; email is the unique natural key for lookups.
type Account struct {
	// ID is stable and assigned externally (it keys the backend relay).
	ID int

	// Name is the display name.
	Name string

	// Email is the login hint sent to the IdP and the roster lookup key.
	Email string

	// Device is the asset this account registers, if any.
	Device *relay.Device

	// Tokens is the cached token record, nil until an exchange or pull
	// succeeds. Overwritten wholesale on refresh, never merged.
	Tokens *oauth.Tokens
}

// Identity returns the account's relay identity.
func (a *Account) Identity() relay.Identity {
	return relay.Identity{ID: a.ID, Name: a.Name, Email: a.Email}
}

// DefaultAccounts returns the fixed demo roster.
func DefaultAccounts() []*Account {
	return []*Account{
		{ID: 1, Name: "GasBeacon1", Email: "gasbeacon.1@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "GasBeacon1", Sensors: []string{"CH4"}}},
		{ID: 2, Name: "GasBeacon2", Email: "gasbeacon.2@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "GasBeacon2", Sensors: []string{"CH4"}}},
		{ID: 3, Name: "GasBeacon3", Email: "gasbeacon.3@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "GasBeacon3", Sensors: []string{"CH4"}}},
		{ID: 4, Name: "Firefighter1", Email: "firefighter.1@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "Firefighter1", Sensors: []string{"CO"}}},
		{ID: 5, Name: "Firefighter2", Email: "firefighter.2@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "Firefighter2", Sensors: []string{"CO"}}},
		{ID: 6, Name: "Firefighter3", Email: "firefighter.3@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "Firefighter3", Sensors: []string{"CO"}}},
		{ID: 7, Name: "DroneIndustrial", Email: "drone.industrial@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "DroneIndustrial", Sensors: []string{"CO"}}},
		{ID: 8, Name: "DroneFirefighter", Email: "drone.firefighter@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "DroneFirefighter", Sensors: []string{"CO"}}},
		{ID: 9, Name: "Busstop1", Email: "busstop.1@cosys-demo.de",
			Device: &relay.Device{Type: "x-am 8000", AssetID: "Busstop1", Sensors: []string{"NO2", "O3"}}},
		{ID: 10, Name: "GarbageTruck1", Email: "garbarge-truck.1@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "GarbageTruck1", Sensors: []string{"NO2"}}},
		{ID: 11, Name: "GarbageTruck2", Email: "garbarge-truck.2@cosys-demo.de",
			Device: &relay.Device{Type: "pac", AssetID: "GarbageTruck2", Sensors: []string{"NO2"}}},
		{ID: 12, Name: "GasBeaconMesh", Email: "hojad58534@secbuf.com",
			Device: &relay.Device{Type: "pac", AssetID: "GasBeaconMesh", Sensors: []string{"O3", "NO2", "CO", "CO2"}}},
	}
}
