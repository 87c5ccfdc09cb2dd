package seed

import (
	programcommands "github.com/AlagappanMk24/Gymunity/modules/programs/application/commands"
	programdomain "github.com/AlagappanMk24/Gymunity/modules/programs/domain"
)

var exerciseLibrary = []programdomain.ExerciseDetails{
	{Name: "Barbell Back Squat", Category: "Strength", MuscleGroup: "Legs", Equipment: "Barbell"},
	{Name: "Romanian Deadlift", Category: "Strength", MuscleGroup: "Hamstrings", Equipment: "Barbell"},
	{Name: "Deadlift", Category: "Strength", MuscleGroup: "Back", Equipment: "Barbell"},
	{Name: "Walking Lunge", Category: "Strength", MuscleGroup: "Legs", Equipment: "Dumbbell"},
	{Name: "Leg Press", Category: "Strength", MuscleGroup: "Legs", Equipment: "Machine"},
	{Name: "Standing Calf Raise", Category: "Strength", MuscleGroup: "Calves", Equipment: "Machine"},
	{Name: "Bench Press", Category: "Strength", MuscleGroup: "Chest", Equipment: "Barbell"},
	{Name: "Overhead Press", Category: "Strength", MuscleGroup: "Shoulders", Equipment: "Barbell"},
	{Name: "Incline Dumbbell Press", Category: "Strength", MuscleGroup: "Chest", Equipment: "Dumbbell"},
	{Name: "Triceps Pushdown", Category: "Strength", MuscleGroup: "Triceps", Equipment: "Cable"},
	{Name: "Pull-Up", Category: "Strength", MuscleGroup: "Back", Equipment: "Bodyweight"},
	{Name: "Barbell Row", Category: "Strength", MuscleGroup: "Back", Equipment: "Barbell"},
	{Name: "Lat Pulldown", Category: "Strength", MuscleGroup: "Back", Equipment: "Cable"},
	{Name: "Dumbbell Curl", Category: "Strength", MuscleGroup: "Biceps", Equipment: "Dumbbell"},
	{Name: "Plank", Category: "Core", MuscleGroup: "Abs", Equipment: "Bodyweight"},
	{Name: "Treadmill Run", Category: "Cardio", MuscleGroup: "Full Body", Equipment: "Machine"},
}

var beginnerStrength = programcommands.ProgramTemplate{
	Input: programcommands.ProgramInput{
		Title:         "Beginner Strength - 8 Weeks",
		Description:   "A four-day upper/lower split that teaches the main lifts and builds a strength base.",
		Type:          string(programdomain.TypeWorkout),
		DurationWeeks: 8,
		Currency:      "EGP",
		IsPublic:      true,
	},
	Weeks: 4,
	Days: []programcommands.DayTemplate{
		{DayNumber: 1, Title: "Lower Body A", Exercises: []programcommands.PrescriptionTemplate{
			{Exercise: "Barbell Back Squat", Sets: 4, Reps: "6-8", RestSeconds: 150},
			{Exercise: "Romanian Deadlift", Sets: 3, Reps: "8-10", RestSeconds: 120},
			{Exercise: "Walking Lunge", Sets: 3, Reps: "10-12", RestSeconds: 90},
			{Exercise: "Standing Calf Raise", Sets: 3, Reps: "12-15", RestSeconds: 60},
		}},
		{DayNumber: 2, Title: "Upper Body Push", Exercises: []programcommands.PrescriptionTemplate{
			{Exercise: "Bench Press", Sets: 4, Reps: "6-8", RestSeconds: 150},
			{Exercise: "Overhead Press", Sets: 3, Reps: "8-10", RestSeconds: 120},
			{Exercise: "Incline Dumbbell Press", Sets: 3, Reps: "10-12", RestSeconds: 90},
			{Exercise: "Triceps Pushdown", Sets: 3, Reps: "12-15", RestSeconds: 60},
		}},
		{DayNumber: 4, Title: "Lower Body B", Exercises: []programcommands.PrescriptionTemplate{
			{Exercise: "Deadlift", Sets: 3, Reps: "5", RestSeconds: 180},
			{Exercise: "Leg Press", Sets: 3, Reps: "10-12", RestSeconds: 120},
			{Exercise: "Plank", Sets: 3, Reps: "45s", RestSeconds: 60},
		}},
		{DayNumber: 5, Title: "Upper Body Pull", Exercises: []programcommands.PrescriptionTemplate{
			{Exercise: "Pull-Up", Sets: 4, Reps: "AMRAP", RestSeconds: 150},
			{Exercise: "Barbell Row", Sets: 3, Reps: "8-10", RestSeconds: 120},
			{Exercise: "Lat Pulldown", Sets: 3, Reps: "10-12", RestSeconds: 90},
			{Exercise: "Dumbbell Curl", Sets: 3, Reps: "12-15", RestSeconds: 60},
		}},
	},
}
