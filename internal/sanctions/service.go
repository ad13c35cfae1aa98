// Package sanctions implements the OFAC/SDN set-membership check. The list is
// loaded once from an optional local JSON file and merged with a hardcoded
// fallback of known sanctioned addresses; load errors degrade to
// fallback-only and never fail a screening.
package sanctions

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"amlscreen/internal/domain"
	"amlscreen/pkg/logger"
)

// Sanctioned crypto addresses from the OFAC SDN list. Kept as a fallback for
// deployments without a refreshed data file.
var knownSanctioned = []string{
	// Tornado Cash (designated August 2022)
	"0x8589427373d6d84e98730d7795d8f6f8731fda16",
	"0x722122df12d4e14e13ac3b6895a86e84145b6967",
	"0xd90e2f925da726b50c4ed8d0fb90ad053324f31b",
	"0xd96f2b1cf787cf7db4f5946fa12b187a39064b15",
	"0x4736dcf1b7a3d580672cce6e7c65cd5cc9cfbfa9",
	"0xd4b88df4d29f5cedd6857912842cff3b20c8cfa3",
	"0x910cbd523d972eb0a6f4cae4618ad62622b39dbf",
	"0xa160cdab225685da1d56aa342ad8841c3b53f291",
	"0xfd8610d20aa15b7b2e3be39b396a1bc3516c7144",
	"0xf60dd140cff0706bae9cd734ac3683f21623b175",
	"0x22aaa7720ddd5388a3c0a3333430953c68f1849b",
	"0xba214c1c1928a32bffe790263e38b4af9bfcd659",
	"0xb1c8094b234dce6e03f10a5b673c1d8c69739a00",
	"0x527653ea119f3e6a1f5bd18fbf4714081d7b31ce",
	"0x58e8dcc13be9780fc42e8723d8ead4cf46943df2",
	"0xd691f27f38b395864ea86cfc7253969b409c362d",
	"0xaeaac358560e11f52454d997aaff2c5731b6f8a6",
	"0x1356c899d8c9467c7f71c195612f8a395abf2f0a",
	"0xa60c772958a3ed56c1f15dd055ba37ac8e523a0d",
	"0x169ad27a470d064dede56a2d3ff727986b15d52b",
	"0x0836222f2b2b24a3f36f98668ed8f0b38d1a872f",
	"0x178169b423a011fff22b9e3f3abea13a5b3bc24e",
	"0x610b717796ad172b316836ac95a2ffad065ceab4",
	"0xbb93e510bbcd0b7beb5a853875f9ec60275cf498",
	// Blender.io
	"bc1qmfu34w2jsz867kv3nef8algrds5xhukgpvlk3q",
	// Garantex
	"0x5f6c97c6ad7bdd0ae7e0dd4ca33a4ed3fdabd4d7",
	// Sinbad.io
	"bc1ql7v2075zt6mccucefezhze9m8dpsh7g4xqjj9g",
}

// Match is the result of one sanctions lookup.
type Match struct {
	Hit    bool
	Detail string
}

type Service struct {
	addresses map[string]struct{}
	loadOnce  sync.Once
	listPath  string
	logger    logger.Logger
}

func NewService(listPath string, log logger.Logger) *Service {
	return &Service{
		listPath: listPath,
		logger:   log,
	}
}

// Check reports whether the address appears on the merged SDN set. Lookup is
// exact, case-insensitive.
func (s *Service) Check(input domain.AddressInput) Match {
	s.loadOnce.Do(s.load)

	normalized := strings.ToLower(strings.TrimSpace(input.Address))
	if _, ok := s.addresses[normalized]; ok {
		return Match{
			Hit:    true,
			Detail: "Address is listed on the OFAC/SDN (Specially Designated Nationals) sanctions list.",
		}
	}
	return Match{}
}

// Size returns the number of loaded addresses, for health reporting.
func (s *Service) Size() int {
	s.loadOnce.Do(s.load)
	return len(s.addresses)
}

func (s *Service) load() {
	s.addresses = make(map[string]struct{}, len(knownSanctioned))

	if s.listPath != "" {
		if raw, err := os.ReadFile(s.listPath); err == nil {
			var list []string
			if err := json.Unmarshal(raw, &list); err != nil {
				s.logger.Warn("SDN list file unreadable, using fallback only", map[string]interface{}{
					"path":  s.listPath,
					"error": err.Error(),
				})
			} else {
				for _, addr := range list {
					s.addresses[strings.ToLower(addr)] = struct{}{}
				}
				s.logger.Info("SDN list loaded", map[string]interface{}{
					"path":      s.listPath,
					"addresses": len(list),
				})
			}
		} else if !os.IsNotExist(err) {
			s.logger.Warn("SDN list file unreadable, using fallback only", map[string]interface{}{
				"path":  s.listPath,
				"error": err.Error(),
			})
		}
	}

	for _, addr := range knownSanctioned {
		s.addresses[strings.ToLower(addr)] = struct{}{}
	}
}
