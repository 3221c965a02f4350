// Package suggestions carries the built-in catalog of task and reward
// ideas parents can pick from, plus ready-made task packages and rotating
// tips. The catalog is static; filtering happens in memory.
package suggestions

// Category groups task suggestions for the picker UI.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// TaskSuggestion is a template a parent can turn into a real task. The
// age bounds are inclusive.
type TaskSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Category    string `json:"category"`
	MinAge      int    `json:"min_age"`
	MaxAge      int    `json:"max_age"`
}

// RewardSuggestion is a template reward, tiered by how many points it
// should cost.
type RewardSuggestion struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	PointsRequired int    `json:"points_required"`
	Tier           string `json:"tier"`
}

// Package bundles a few related task suggestions a parent can add in one
// go.
type Package struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	Tasks       []TaskSuggestion `json:"tasks"`
}

// Reward tiers, smallest to largest.
const (
	TierSmall  = "small"
	TierMedium = "medium"
	TierLarge  = "large"
	TierEpic   = "epic"
)

var Categories = []Category{
	{ID: "home", Name: "Home & Organization", Icon: "🏠"},
	{ID: "school", Name: "School & Study", Icon: "📚"},
	{ID: "health", Name: "Health & Wellness", Icon: "💪"},
	{ID: "behavior", Name: "Behavior", Icon: "⭐"},
	{ID: "digital", Name: "Digital & Screen Time", Icon: "💻"},
	{ID: "routine", Name: "Routine & Responsibility", Icon: "⏰"},
}

var Tasks = []TaskSuggestion{
	{Title: "Make the bed", Description: "Leave the bed made in the morning", Points: 5, Category: "home", MinAge: 3, MaxAge: 12},
	{Title: "Put away 5 toys", Description: "Put toys back where they belong", Points: 5, Category: "home", MinAge: 3, MaxAge: 8},
	{Title: "Pack the backpack", Description: "Get the backpack ready for the next day", Points: 10, Category: "home", MinAge: 6, MaxAge: 12},
	{Title: "Put clothes away", Description: "Fold and put away clean clothes", Points: 10, Category: "home", MinAge: 6, MaxAge: 12},
	{Title: "Help set the table", Description: "Put plates and cutlery on the table", Points: 5, Category: "home", MinAge: 3, MaxAge: 12},

	{Title: "Read for 5 minutes", Description: "Read a book for 5 minutes", Points: 5, Category: "school", MinAge: 6, MaxAge: 12},
	{Title: "Finish homework", Description: "Complete all of today's homework", Points: 15, Category: "school", MinAge: 6, MaxAge: 12},
	{Title: "Read 10 pages", Description: "Read 10 pages of a book", Points: 10, Category: "school", MinAge: 6, MaxAge: 12},
	{Title: "Read a whole chapter", Description: "Finish reading an entire chapter", Points: 25, Category: "school", MinAge: 9, MaxAge: 12},
	{Title: "Score above 8 on a test", Description: "Get a grade of 8 or higher on a test or project", Points: 30, Category: "school", MinAge: 6, MaxAge: 12},
	{Title: "Do extra study exercises", Description: "Work through extra practice exercises", Points: 20, Category: "school", MinAge: 9, MaxAge: 12},

	{Title: "Drink a glass of water", Description: "Drink water during the day", Points: 3, Category: "health", MinAge: 3, MaxAge: 12},
	{Title: "Eat a piece of fruit", Description: "Eat a healthy piece of fruit", Points: 5, Category: "health", MinAge: 3, MaxAge: 12},
	{Title: "Brush your teeth", Description: "Brush teeth after meals", Points: 5, Category: "health", MinAge: 3, MaxAge: 12},
	{Title: "Drink water 3 times", Description: "Drink at least 3 glasses of water today", Points: 10, Category: "health", MinAge: 3, MaxAge: 12},
	{Title: "Exercise for 20 minutes", Description: "Do some physical activity for 20 minutes", Points: 15, Category: "health", MinAge: 6, MaxAge: 12},

	{Title: "Use your magic words", Description: "Say please, thank you and sorry", Points: 10, Category: "behavior", MinAge: 3, MaxAge: 12},
	{Title: "No fighting with siblings", Description: "Get through the day without a fight", Points: 20, Category: "behavior", MinAge: 3, MaxAge: 12},
	{Title: "Help a grown-up", Description: "Offer to help with a chore", Points: 20, Category: "behavior", MinAge: 6, MaxAge: 12},
	{Title: "Share your toys", Description: "Share toys with siblings or friends", Points: 15, Category: "behavior", MinAge: 3, MaxAge: 8},

	{Title: "Screens off on time", Description: "Turn off the tablet or TV at the agreed time", Points: 10, Category: "digital", MinAge: 6, MaxAge: 12},
	{Title: "Respect screen time limits", Description: "Stay within the agreed screen time", Points: 10, Category: "digital", MinAge: 6, MaxAge: 12},
	{Title: "No phone at the table", Description: "Leave the phone alone during meals", Points: 10, Category: "digital", MinAge: 9, MaxAge: 12},

	{Title: "Wake up on time", Description: "Get out of bed at the agreed time", Points: 10, Category: "routine", MinAge: 6, MaxAge: 12},
	{Title: "Shower without being asked", Description: "Take a shower without reminders", Points: 10, Category: "routine", MinAge: 6, MaxAge: 12},
	{Title: "Bedtime on time", Description: "Go to bed at the agreed time", Points: 10, Category: "routine", MinAge: 3, MaxAge: 12},
	{Title: "Make your own snack", Description: "Prepare a simple snack without help", Points: 15, Category: "routine", MinAge: 9, MaxAge: 12},
}

var Rewards = []RewardSuggestion{
	{Title: "Extra tablet time", Description: "30 extra minutes of tablet", PointsRequired: 20, Tier: TierSmall},
	{Title: "Pick the dessert", Description: "Choose today's dessert", PointsRequired: 15, Tier: TierSmall},
	{Title: "30 minutes of video games", Description: "Half an hour of gaming", PointsRequired: 25, Tier: TierSmall},
	{Title: "Pick the cartoon", Description: "Choose which cartoon to watch", PointsRequired: 20, Tier: TierSmall},

	{Title: "Trip to the park", Description: "Go to the park on the weekend", PointsRequired: 50, Tier: TierMedium},
	{Title: "Pick the movie", Description: "Choose tonight's movie", PointsRequired: 40, Tier: TierMedium},
	{Title: "Small toy", Description: "Get a small toy", PointsRequired: 60, Tier: TierMedium},
	{Title: "Ice cream outing", Description: "Go out for ice cream", PointsRequired: 45, Tier: TierMedium},
	{Title: "Stay up late", Description: "Stay up 1 hour later on the weekend", PointsRequired: 50, Tier: TierMedium},

	{Title: "New video game", Description: "Get a new game", PointsRequired: 150, Tier: TierLarge},
	{Title: "Action figure", Description: "An action figure or doll", PointsRequired: 120, Tier: TierLarge},
	{Title: "Extra allowance", Description: "Get some extra allowance", PointsRequired: 100, Tier: TierLarge},
	{Title: "New book", Description: "Pick out a new book", PointsRequired: 100, Tier: TierLarge},
	{Title: "Art kit", Description: "A kit of art supplies", PointsRequired: 130, Tier: TierLarge},

	{Title: "Bicycle", Description: "A brand new bicycle", PointsRequired: 500, Tier: TierEpic},
	{Title: "Scooter", Description: "A new scooter", PointsRequired: 400, Tier: TierEpic},
	{Title: "Weekend trip", Description: "A short weekend trip", PointsRequired: 600, Tier: TierEpic},
	{Title: "Game console", Description: "A new game console", PointsRequired: 800, Tier: TierEpic},
	{Title: "Tablet", Description: "A tablet of your own", PointsRequired: 700, Tier: TierEpic},
}

var Packages = []Package{
	{
		ID:          "organized",
		Name:        "Organized Kid",
		Description: "Ready-made chores to keep the house in order.",
		Icon:        "🏠",
		Tasks: []TaskSuggestion{
			{Title: "Make the bed", Description: "Leave the bed made in the morning", Points: 5, Category: "home"},
			{Title: "Put away toys", Description: "Put toys back where they belong", Points: 5, Category: "home"},
			{Title: "Pack the backpack", Description: "Get the backpack ready for the next day", Points: 10, Category: "home"},
		},
	},
	{
		ID:          "student",
		Name:        "Super Student",
		Description: "Quests that encourage studying and reading.",
		Icon:        "📚",
		Tasks: []TaskSuggestion{
			{Title: "Read 10 pages", Description: "Read 10 pages of a book", Points: 10, Category: "school"},
			{Title: "Finish homework", Description: "Complete all of today's homework", Points: 15, Category: "school"},
			{Title: "Extra exercises", Description: "Work through extra practice exercises", Points: 25, Category: "school"},
		},
	},
	{
		ID:          "behavior",
		Name:        "Behavior Ninja",
		Description: "Build good behavior habits.",
		Icon:        "⭐",
		Tasks: []TaskSuggestion{
			{Title: "Use your magic words", Description: "Say please, thank you and sorry", Points: 10, Category: "behavior"},
			{Title: "No fighting with siblings", Description: "Get through the day without a fight", Points: 20, Category: "behavior"},
			{Title: "Help a grown-up", Description: "Offer to help with a chore", Points: 20, Category: "behavior"},
		},
	},
	{
		ID:          "health",
		Name:        "Health & Wellness",
		Description: "Small daily actions for a healthy routine.",
		Icon:        "💪",
		Tasks: []TaskSuggestion{
			{Title: "Eat a piece of fruit", Description: "Eat a healthy piece of fruit", Points: 5, Category: "health"},
			{Title: "Drink water 3 times", Description: "Drink at least 3 glasses of water today", Points: 10, Category: "health"},
			{Title: "Brush your teeth", Description: "Brush teeth after meals", Points: 5, Category: "health"},
		},
	},
}

var Tips = []string{
	"Use small goals to build discipline a little at a time.",
	"Rewards can be experiences, not just things!",
	"Parents often add quick quests at the end of the day. Want to add one?",
	"How about balancing study quests with household chores?",
	"Behavior quests help develop important values.",
	"Remember: consistency beats perfection.",
	"Celebrate the small wins! They motivate a lot.",
	"Family chores build memories and teach responsibility.",
}

// TasksForAge returns the task suggestions whose age range includes age.
func TasksForAge(age int) []TaskSuggestion {
	var out []TaskSuggestion
	for _, t := range Tasks {
		if age >= t.MinAge && age <= t.MaxAge {
			out = append(out, t)
		}
	}
	return out
}

// TasksByCategory returns the task suggestions in one category.
func TasksByCategory(category string) []TaskSuggestion {
	var out []TaskSuggestion
	for _, t := range Tasks {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// RewardsByTier returns the reward suggestions in one tier.
func RewardsByTier(tier string) []RewardSuggestion {
	var out []RewardSuggestion
	for _, r := range Rewards {
		if r.Tier == tier {
			out = append(out, r)
		}
	}
	return out
}
