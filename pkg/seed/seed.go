package seed

import (
	"context"
	_ "embed"
	"os"
	"time"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/storage"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

type User struct {
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	FirstName      string   `yaml:"firstName"`
	LastName       string   `yaml:"lastName"`
	PreferredTheme string   `yaml:"preferredTheme"`
	Privileges     []string `yaml:"privileges"`
}

type Hero struct {
	Name      string     `yaml:"name"`
	AlterEgo  string     `yaml:"alterEgo"`
	Power     string     `yaml:"power"`
	Rating    *int       `yaml:"rating"`
	PowerDate *time.Time `yaml:"powerDate"`
}

type Data struct {
	Users  []User `yaml:"users"`
	Heroes []Hero `yaml:"heroes"`
}

// Default returns the seed compiled into the binary.
func Default() (Data, error) {
	return Parse(defaultSeed)
}

func Load(path string) (Data, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Data{}, errors.Wrap(err, "read seed file")
	}

	return Parse(body)
}

func Parse(body []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(body, &data); err != nil {
		return Data{}, errors.Wrap(err, "decode seed")
	}

	for i, user := range data.Users {
		if user.Username == "" || user.Password == "" {
			return Data{}, errors.Errorf("seed user %d: username and password are required", i)
		}
	}
	for i, hero := range data.Heroes {
		if hero.Name == "" {
			return Data{}, errors.Errorf("seed hero %d: name is required", i)
		}
	}

	return data, nil
}

func (d Data) HeroModels() []models.Hero {
	heroes := make([]models.Hero, 0, len(d.Heroes))
	for _, hero := range d.Heroes {
		heroes = append(heroes, models.Hero{
			Name:      hero.Name,
			AlterEgo:  hero.AlterEgo,
			Power:     hero.Power,
			Rating:    hero.Rating,
			PowerDate: hero.PowerDate,
		})
	}
	return heroes
}

// Apply creates the seed users with their logins and replaces all heroes.
func Apply(ctx context.Context, strg storage.StorageI, data Data, log logger.LoggerI) error {
	for _, u := range data.Users {
		user, err := strg.User().Create(ctx, &models.CreateUserRequest{
			FirstName:      u.FirstName,
			LastName:       u.LastName,
			PreferredTheme: u.PreferredTheme,
			Privileges:     u.Privileges,
		})
		if err != nil {
			return errors.Wrapf(err, "create user %s", u.Username)
		}

		err = strg.LoginInfo().Create(ctx, &models.LoginInfo{
			Username: u.Username,
			Password: u.Password,
			UserID:   user.ID,
		})
		if err != nil {
			return errors.Wrapf(err, "create login for %s", u.Username)
		}

		log.Info("seeded user", logger.String("username", u.Username), logger.Int64("id", user.ID))
	}

	if err := strg.Hero().Reset(ctx, data.HeroModels()); err != nil {
		return errors.Wrap(err, "reset heroes")
	}

	log.Info("seeded heroes", logger.Int("count", len(data.Heroes)))

	return nil
}
