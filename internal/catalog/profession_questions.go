package catalog

import "github.com/typeform-survey/survey-client/internal/models"

// professionQuestions follow the common block for each profession
var professionQuestions = map[models.Profession][]models.Question{
	models.ProfessionStudent: {
		{
			ID:   "student_1",
			Text: "How many hours do you study per day?",
			Kind: models.KindSingleChoice,
			Options: []string{
				"Less than 2 hours",
				"2-4 hours",
				"4-6 hours",
				"More than 6 hours",
			},
			VideoSrc:         videoBase + "video1.mp4",
			AllowVideoUpload: true,
		},
		{
			ID:               "student_2",
			Text:             "What's your biggest challenge as a student?",
			Kind:             models.KindText,
			Placeholder:      "Describe your biggest academic challenge...",
			VideoSrc:         videoBase + "video2.mp4",
			AllowVideoUpload: true,
		},
	},
	models.ProfessionITProfessional: {
		{
			ID:   "itProfessional_1",
			Text: "How many years of experience do you have in IT?",
			Kind: models.KindSingleChoice,
			Options: []string{
				"Less than 1 year",
				"1-3 years",
				"3-5 years",
				"5-10 years",
				"More than 10 years",
			},
			VideoSrc:         videoBase + "video1.mp4",
			AllowVideoUpload: true,
		},
		{
			ID:               "itProfessional_2",
			Text:             "What technology trends are you most excited about?",
			Kind:             models.KindText,
			Placeholder:      "Tell us which trends you follow...",
			VideoSrc:         videoBase + "video2.mp4",
			AllowVideoUpload: true,
		},
	},
	models.ProfessionDoctor: {
		{
			ID:   "doctor_1",
			Text: "What medical specialty do you practice?",
			Kind: models.KindSingleChoice,
			Options: []string{
				"General practice",
				"Internal medicine",
				"Surgery",
				"Pediatrics",
				"Psychiatry",
				"Other",
			},
			VideoSrc:         videoBase + "video1.mp4",
			AllowVideoUpload: true,
		},
		{
			ID:               "doctor_2",
			Text:             "What healthcare challenges concern you most?",
			Kind:             models.KindText,
			Placeholder:      "Describe the challenges you see in practice...",
			VideoSrc:         videoBase + "video2.mp4",
			AllowVideoUpload: true,
		},
	},
	models.ProfessionGovernmentEmployee: {
		{
			ID:   "governmentEmployee_1",
			Text: "How long have you worked in the public sector?",
			Kind: models.KindSingleChoice,
			Options: []string{
				"Less than 2 years",
				"2-5 years",
				"5-10 years",
				"More than 10 years",
			},
			VideoSrc:         videoBase + "video1.mp4",
			AllowVideoUpload: true,
		},
		{
			ID:               "governmentEmployee_2",
			Text:             "What improvements would you suggest for public services?",
			Kind:             models.KindText,
			Placeholder:      "Share your suggestions...",
			VideoSrc:         videoBase + "video2.mp4",
			AllowVideoUpload: true,
		},
	},
	models.ProfessionOther: {
		{
			ID:   "other_1",
			Text: "Do you find yourself procrastinating?",
			Kind: models.KindSingleChoice,
			Options: []string{
				"Yes, all the time",
				"Sometimes",
				"No, I always organize well",
			},
			VideoSrc:         videoBase + "video1.mp4",
			AllowVideoUpload: true,
		},
		{
			ID:               "other_2",
			Text:             "What's your main productivity challenge?",
			Kind:             models.KindText,
			Placeholder:      "Describe your biggest productivity hurdle...",
			VideoSrc:         videoBase + "video2.mp4",
			AllowVideoUpload: true,
		},
	},
}
