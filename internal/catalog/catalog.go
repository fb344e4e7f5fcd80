package catalog

// MuscleGroup groups the predefined exercises shown when building a routine.
type MuscleGroup struct {
	ID        int                  `json:"id"`
	Name      string               `json:"name"`
	Exercises []PredefinedExercise `json:"exercises"`
}

type PredefinedExercise struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	MuscleGroupID int    `json:"muscleGroupId"`
}

// Seed is the predefined catalog inserted by the seed command.
var Seed = []struct {
	MuscleGroup string
	Exercises   []string
}{
	{MuscleGroup: "Chest", Exercises: []string{"Push-ups", "Wide Push-ups", "Diamond Push-ups", "Decline Push-ups"}},
	{MuscleGroup: "Back", Exercises: []string{"Pull-ups", "Chin-ups", "Australian Rows", "Superman Holds"}},
	{MuscleGroup: "Legs", Exercises: []string{"Squats", "Lunges", "Jump Squats", "Calf Raises"}},
	{MuscleGroup: "Shoulders", Exercises: []string{"Pike Push-ups", "Handstand Push-ups", "Arm Circles", "Plank Shoulder Taps"}},
	{MuscleGroup: "Arms", Exercises: []string{"Tricep Dips", "Close-grip Push-ups", "Bench Dips", "Isometric Curls"}},
	{MuscleGroup: "Core", Exercises: []string{"Sit-ups", "Crunches", "Leg Raises", "Mountain Climbers"}},
	{MuscleGroup: "Full Body", Exercises: []string{"Burpees", "Jumping Jacks", "Bear Crawls", "Star Jumps"}},
}
