package themes

// Theme is one month's scenario in the calendar catalog.
type Theme struct {
	Month       string
	Title       string
	Description string
	Prompt      string
}

// catalog maps month number (1-12) to its themed scenario.
var catalog = map[int]Theme{
	1: {
		Month:       "January",
		Title:       "New Year's Firefighter Hero",
		Description: "Sexy firefighter putting out fireworks with champagne bottles while wearing nothing but suspenders and a helmet",
		Prompt:      "Hyper-realistic photo of an incredibly muscular, shirtless male firefighter with defined abs and biceps, wearing firefighter suspenders and a helmet, spraying champagne on New Year's fireworks, confetti everywhere, Times Square background, dramatic lighting, heroic pose",
	},
	2: {
		Month:       "February",
		Title:       "Valentine's Day Cupid Cop",
		Description: "Ripped police officer as Cupid, arresting criminals with heart-shaped arrows and handcuffs",
		Prompt:      "Hyper-realistic photo of a chiseled, shirtless male police officer with perfect abs, wearing cop hat and holding heart-shaped bow and arrow, surrounded by roses and chocolate boxes, Valentine's themed, romantic lighting, smoldering expression",
	},
	3: {
		Month:       "March",
		Title:       "St. Patrick's Day Brawler",
		Description: "Buff Irish cop wrestling a leprechaun for a pot of gold in a pub",
		Prompt:      "Hyper-realistic photo of an incredibly muscular shirtless male in green police uniform pants, fighting over a pot of gold, St. Patrick's Day decorations, shamrocks, beer steins, Irish pub background, comedic action pose",
	},
	4: {
		Month:       "April",
		Title:       "Easter Bunny Lifeguard",
		Description: "Hunky lifeguard in bunny ears rescuing drowning chocolate eggs from a pool",
		Prompt:      "Hyper-realistic photo of a tan, muscular male lifeguard with six-pack abs, wearing red swim trunks and Easter bunny ears, rescuing chocolate eggs from pool, Easter decorations, spring flowers, sunny beach background, heroic rescue pose",
	},
	5: {
		Month:       "May",
		Title:       "Savage Gardener",
		Description: "Shredded gardener battling giant mutant flowers with a garden hose",
		Prompt:      "Hyper-realistic photo of a sweaty, muscular shirtless male gardener with dirty jeans, spraying water at giant flowers, covered in dirt and petals, garden chaos, May flowers everywhere, action movie lighting, determined expression",
	},
	6: {
		Month:       "June",
		Title:       "Beach Whale Rescuer",
		Description: "Ripped lifeguard desperately trying to save a giant inflatable whale",
		Prompt:      "Hyper-realistic photo of a bronzed, muscular male lifeguard in tight swim trunks, carrying a massive inflatable whale toy, summer beach scene, surfboards, beach umbrellas, sunset lighting, comedic struggling pose",
	},
	7: {
		Month:       "July",
		Title:       "Patriotic BBQ Master",
		Description: "Buff chef in American flag shorts grilling hot dogs while fireworks explode behind him",
		Prompt:      "Hyper-realistic photo of a muscular shirtless male chef wearing American flag shorts and apron, grilling hot dogs, fireworks exploding in background, 4th of July decorations, red white and blue everywhere, patriotic dramatic lighting",
	},
	8: {
		Month:       "August",
		Title:       "Sandcastle Construction Hunk",
		Description: "Sweaty construction worker building elaborate sandcastles on the beach",
		Prompt:      "Hyper-realistic photo of a tan, muscular male construction worker shirtless, wearing hard hat and tool belt, building massive sandcastle, beach toys scattered around, summer sunset, ocean waves, focused concentration pose",
	},
	9: {
		Month:       "September",
		Title:       "Badass Biker on the Highway",
		Description: "Incredibly tough and ripped biker riding a Harley Davidson through the open road",
		Prompt:      "Hyper-realistic photo of an extremely muscular, tattooed male biker with huge arms and defined abs, wearing a leather vest with no shirt underneath, black leather pants, bandana, sunglasses, riding a chrome Harley Davidson motorcycle, open highway background, sunset lighting, wind in hair, tough intimidating expression, road trip vibes",
	},
	10: {
		Month:       "October",
		Title:       "Vampire Hunter",
		Description: "Ripped vampire slayer fighting inflatable Halloween decorations",
		Prompt:      "Hyper-realistic photo of a muscular shirtless male vampire hunter with cape, fighting inflatable Halloween ghosts and pumpkins, spooky gothic mansion background, full moon, dramatic fog, action-packed vampire hunting pose",
	},
	11: {
		Month:       "November",
		Title:       "Turkey Wrangling Pilgrim",
		Description: "Buff pilgrim chasing an escaped Thanksgiving turkey through a cornfield",
		Prompt:      "Hyper-realistic photo of a muscular male in torn pilgrim outfit showing abs, chasing a turkey, autumn leaves flying, Thanksgiving decorations, cornfield background, harvest colors, comedic chase scene, determined expression",
	},
	12: {
		Month:       "December",
		Title:       "Sexy Santa Chimney Rescue",
		Description: "Shirtless Santa stuck in chimney, presents spilling everywhere",
		Prompt:      "Hyper-realistic photo of a muscular shirtless male Santa with Santa hat and red pants, stuck in brick chimney, presents scattered below, Christmas lights, snow, North Pole workshop background, comedic struggling pose, biceps flexing",
	},
}

// Get returns the theme for a month number, or false when the number is
// outside 1-12.
func Get(month int) (Theme, bool) {
	t, ok := catalog[month]
	return t, ok
}

// All returns the catalog keyed by month number.
func All() map[int]Theme {
	out := make(map[int]Theme, len(catalog))
	for k, v := range catalog {
		out[k] = v
	}
	return out
}
