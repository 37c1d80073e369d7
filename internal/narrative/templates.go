// Package narrative renders flavor text for events, whispers, and
// manifestations. Everything here is presentational; no state changes.
package narrative

import (
	"fmt"
	"strings"

	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/society"
)

var eventDescriptions = map[society.EventType][]string{
	society.EventCelebration: {
		"lanterns go up in every doorway as %s gathers the streets into song",
		"a feast spills out of the square, and for one night %s makes everyone kin",
		"drums and laughter carry past midnight in honor of %s",
	},
	society.EventCrisis: {
		"shortages and short tempers strain every household tied to %s",
		"rumors turn to accusations, and %s finds itself at the center of them",
		"the markets close early; nobody tied to %s sleeps well tonight",
	},
	society.EventDisaster: {
		"the ground shakes and roofs fall; %s counts its losses at dawn",
		"floodwater takes the low quarter before anyone tied to %s can react",
		"fire jumps the rooftops, and %s is left with ash and questions",
	},
	society.EventMiracle: {
		"a dry well runs sweet again, and %s calls it an answer",
		"the sick child stands and walks; %s fills with witnesses by noon",
		"light falls where no light should, and %s kneels in it",
	},
	society.EventRevelation: {
		"a voice in the night leaves %s with words nobody can unhear",
		"an old text reads differently now, and %s argues about what changed",
		"three strangers report the same dream, and %s takes notice",
	},
	society.EventSchism: {
		"an argument over doctrine splits %s down the middle",
		"half of %s walks out of the hall and does not come back",
		"two factions of %s now meet at opposite ends of the city",
	},
	society.EventReform: {
		"the elders of %s quietly rewrite what membership means",
		"%s opens its doors to those it once turned away",
		"old rites are set aside as %s remakes itself",
	},
}

var eventMemories = map[society.EventType][]string{
	society.EventCelebration: {
		"I danced until my feet ached and felt lighter than I have in years",
		"for one night the whole city felt like family",
	},
	society.EventCrisis: {
		"I watched neighbors turn on each other over a sack of grain",
		"I lay awake listening to the arguments through the wall",
	},
	society.EventDisaster: {
		"I dug through rubble with my hands and found what I feared",
		"the water came so fast there was no time to save anything",
	},
	society.EventMiracle: {
		"I saw it with my own eyes and still do not have words for it",
		"something impossible happened, and I was there",
	},
	society.EventRevelation: {
		"the words were meant for all of us, but they felt meant for me",
		"I heard the account three times from three mouths and it never varied",
	},
	society.EventSchism: {
		"people I prayed beside now cross the street to avoid me",
		"I had to choose a side, and I am not sure I chose right",
	},
	society.EventReform: {
		"the old ways are gone, and I do not know yet if I mourn them",
		"everything I was taught is being rewritten in front of me",
	},
}

// EventDescription renders a description for a collective event. The
// movement is optional; without one the text speaks of the city at large.
func EventDescription(t society.EventType, movement *society.CulturalMovement, rnd entropy.Source) string {
	subject := "the city"
	if movement != nil {
		subject = movement.Name
	}
	lines := eventDescriptions[t]
	if len(lines) == 0 {
		return fmt.Sprintf("something stirs around %s", subject)
	}
	line := lines[rnd.Intn(len(lines))]
	if strings.Contains(line, "%s") {
		return fmt.Sprintf(line, subject)
	}
	return line
}

// EventMemory renders the first-person memory a divine event leaves.
func EventMemory(t society.EventType, rnd entropy.Source) string {
	lines := eventMemories[t]
	if len(lines) == 0 {
		return "something happened today that I will not forget"
	}
	return lines[rnd.Intn(len(lines))]
}

var manifestScenes = map[society.ManifestIntensity][]string{
	society.IntensitySubtle: {
		"a pattern in the frost that could not be chance",
		"a stillness in the birds, all facing the same way",
		"a candle that burned the whole night without shrinking",
	},
	society.IntensityNotable: {
		"a column of light over the old well at dusk",
		"every bell in the city ringing once, untouched",
		"rain that fell upward for the space of a breath",
	},
	society.IntensityUndeniable: {
		"a figure of light standing over the square, seen by hundreds",
		"the river halting mid-current while a voice filled the air",
		"the night sky rearranging itself into a sign",
	},
	society.IntensityOverwhelming: {
		"the sky splitting open above the whole city",
		"a presence that pressed on every mind at once",
		"the sun standing still while a voice spoke every name",
	},
}

var reactionFraming = map[society.Reaction]string{
	society.ReactWorship:    "I fell to my knees where I stood",
	society.ReactAwe:        "I could not look away",
	society.ReactFear:       "my hands would not stop shaking",
	society.ReactDenial:     "there has to be an explanation, there has to be",
	society.ReactSkepticism: "I want to know how it was done",
	society.ReactAnger:      "how dare it show itself now, after everything",
	society.ReactEcstasy:    "I have never felt so full of light",
	society.ReactDespair:    "even this changes nothing for me",
}

// ManifestMemory renders the memory a manifestation leaves in a witness,
// colored by how they reacted.
func ManifestMemory(kind string, intensity society.ManifestIntensity, reaction society.Reaction, rnd entropy.Source) string {
	scenes := manifestScenes[intensity]
	scene := "something beyond explanation"
	if len(scenes) > 0 {
		scene = scenes[rnd.Intn(len(scenes))]
	}
	framing, ok := reactionFraming[reaction]
	if !ok {
		framing = "I do not know what to feel"
	}
	if kind != "" {
		return fmt.Sprintf("I witnessed %s: %s. %s.", kind, scene, framing)
	}
	return fmt.Sprintf("I witnessed %s. %s.", scene, framing)
}
