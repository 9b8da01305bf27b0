package cli

import (
	"math/rand"
	"os"
	"strings"

	"github.com/canopy-network/ballot/lib"
	"github.com/tjarratt/babble"
)

const dictionaryPath = "/usr/share/dict/words"

// fallbackWords name voters when the system has no dictionary
var fallbackWords = []string{
	"amber", "birch", "cedar", "delta", "ember", "fjord", "grove", "harbor", "iris", "juniper",
	"kestrel", "lagoon", "maple", "nectar", "onyx", "prairie", "quartz", "raven", "sierra", "tundra",
}

// Populate() casts count votes for random choices from randomly named principals
// it exercises a local node; repeated names are reported and skipped
func Populate(count uint64) {
	babbler := newBabbler()
	for i := uint64(0); i < count; i++ {
		voter, choice := lib.Principal(babbler.Babble()), randomChoice()
		result, err := client.Vote(voter, choice)
		if err != nil {
			l.Fatal(err.Error())
		}
		if !result.Success() {
			l.Warnf("Vote %s from %s rejected: %s", choice, voter, result.Error.Msg)
			continue
		}
		l.Infof("Vote %s from %s accepted", choice, voter)
	}
}

// newBabbler() generates three word voter names from the system dictionary
func newBabbler() babble.Babbler {
	words := fallbackWords
	if bz, err := os.ReadFile(dictionaryPath); err == nil {
		if fields := strings.Fields(string(bz)); len(fields) != 0 {
			words = fields
		}
	}
	return babble.Babbler{Count: 3, Separator: "-", Words: words}
}

func randomChoice() lib.Choice {
	if rand.Intn(2) == 0 {
		return lib.ChoiceA
	}
	return lib.ChoiceB
}
